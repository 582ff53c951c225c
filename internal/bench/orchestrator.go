package bench

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shexpose/shbench/internal/config"
	"github.com/shexpose/shbench/internal/discovery"
	"github.com/shexpose/shbench/internal/payload"
)

// Instance is a live resource confirmed, by reading it, to hold values for
// the listed attributes. Read-only while READ/UPDATE benchmarks run.
type Instance struct {
	URI   string
	Attrs []string
}

// Orchestrator runs the CREATE/READ/UPDATE/DELETE suite for one entity
// across the configured batch-size ladder.
type Orchestrator struct {
	exec   *Executor
	cfg    *config.Config
	logger *zap.Logger

	// sleep is swappable so tests do not pay the settle delays.
	sleep func(time.Duration)

	// OnPhase, when set, receives each phase's summaries as it completes.
	OnPhase func(entity, operation string, summaries []Summary)
}

// NewOrchestrator wires an orchestrator for one run.
func NewOrchestrator(exec *Executor, cfg *config.Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{exec: exec, cfg: cfg, logger: logger, sleep: time.Sleep}
}

// RunEntity runs all four phases for one entity and returns the summaries in
// phase order. uris is the pool of existing resource identifiers from the
// triple store; the caller has already ruled out an empty pool.
func (o *Orchestrator) RunEntity(ctx context.Context, ep *discovery.Endpoint, uris []string) []Summary {
	log := o.logger.With(zap.String("entity", ep.Entity))

	instances := o.VerifyInstances(ctx, ep, uris)
	log.Info("verified instances", zap.Int("count", len(instances)))
	if len(instances) == 0 {
		log.Warn("no verified instances; READ and UPDATE benchmarks will be skipped")
	}

	var all []Summary
	phases := []struct {
		op  string
		run func() []Summary
	}{
		{OpCreate, func() []Summary { return o.benchmarkCreate(ctx, ep) }},
		{OpRead, func() []Summary { return o.benchmarkRead(ctx, ep, instances) }},
		{OpUpdate, func() []Summary { return o.benchmarkUpdate(ctx, ep, instances) }},
		{OpDelete, func() []Summary { return o.benchmarkDelete(ctx, ep) }},
	}
	for _, phase := range phases {
		summaries := phase.run()
		if o.OnPhase != nil {
			o.OnPhase(ep.Entity, phase.op, summaries)
		}
		all = append(all, summaries...)
		o.sleep(o.cfg.PhaseSettle)
	}

	for i := range all {
		all[i].Entity = ep.Entity
	}
	return all
}

// VerifyInstances samples up to the configured cap of URIs and reads each one
// concurrently, keeping the resources that respond with at least a document
// and recording which attributes currently hold non-empty values.
func (o *Orchestrator) VerifyInstances(ctx context.Context, ep *discovery.Endpoint, uris []string) []Instance {
	sample := sampleURIs(uris, o.cfg.VerifySampleCap)

	results := make([]*Instance, len(sample))
	var wg sync.WaitGroup
	for i, uri := range sample {
		wg.Add(1)
		go func(i int, uri string) {
			defer wg.Done()
			doc, err := o.exec.ReadResource(ctx, ep.Entity, uri)
			if err != nil {
				o.logger.Debug("instance verification failed", zap.String("uri", uri), zap.Error(err))
				return
			}
			results[i] = &Instance{URI: uri, Attrs: presentAttrs(ep, doc)}
		}(i, uri)
	}
	wg.Wait()

	instances := make([]Instance, 0, len(results))
	for _, inst := range results {
		if inst != nil {
			instances = append(instances, *inst)
		}
	}
	return instances
}

func sampleURIs(uris []string, limit int) []string {
	if len(uris) <= limit {
		out := make([]string, len(uris))
		copy(out, uris)
		return out
	}
	out := make([]string, 0, limit)
	for _, i := range rand.Perm(len(uris))[:limit] {
		out = append(out, uris[i])
	}
	return out
}

// presentAttrs lists the discovered attributes whose live values are neither
// null nor empty.
func presentAttrs(ep *discovery.Endpoint, doc map[string]json.RawMessage) []string {
	attrs := make([]string, 0, len(ep.Attributes))
	for _, attr := range ep.Attributes {
		raw, ok := doc[attr]
		if !ok || emptyValue(raw) {
			continue
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func emptyValue(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		if len(t) == 0 {
			return true
		}
		switch inner := t["value"].(type) {
		case nil:
			return true
		case string:
			return inner == ""
		default:
			return false
		}
	default:
		return false
	}
}

func (o *Orchestrator) benchmarkCreate(ctx context.Context, ep *discovery.Endpoint) []Summary {
	summaries := make([]Summary, 0, len(o.cfg.BatchSizes))
	for _, n := range o.cfg.BatchSizes {
		outcomes := RunBatch(ctx, n, func(ctx context.Context, _ int) Outcome {
			body := payload.Body(ep)
			if o.cfg.ValidatePayloads {
				if err := payload.Validate(ep, body); err != nil {
					o.logger.Warn("synthesized payload failed schema validation", zap.Error(err))
				}
			}
			return o.exec.Create(ctx, ep.Entity, body)
		})
		summaries = append(summaries, Summarize(OpCreate, n, outcomes))
		o.sleep(o.cfg.BatchSettle)
	}
	return summaries
}

func (o *Orchestrator) benchmarkRead(ctx context.Context, ep *discovery.Endpoint, instances []Instance) []Summary {
	if len(instances) == 0 {
		return nil
	}
	summaries := make([]Summary, 0, len(o.cfg.BatchSizes))
	for _, n := range o.cfg.BatchSizes {
		outcomes := RunBatch(ctx, n, func(ctx context.Context, _ int) Outcome {
			inst := instances[rand.Intn(len(instances))]
			return o.exec.Read(ctx, ep.Entity, inst.URI)
		})
		summaries = append(summaries, Summarize(OpRead, n, outcomes))
		o.sleep(o.cfg.BatchSettle)
	}
	return summaries
}

func (o *Orchestrator) benchmarkUpdate(ctx context.Context, ep *discovery.Endpoint, instances []Instance) []Summary {
	// Only instances with at least one confirmed-present attribute are
	// valid update targets.
	pool := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if len(inst.Attrs) > 0 {
			pool = append(pool, inst)
		}
	}
	if len(pool) == 0 {
		if len(instances) > 0 {
			o.logger.Warn("no verified instance holds any attribute; UPDATE benchmark skipped",
				zap.String("entity", ep.Entity))
		}
		return nil
	}

	summaries := make([]Summary, 0, len(o.cfg.BatchSizes))
	for _, n := range o.cfg.BatchSizes {
		outcomes := RunBatch(ctx, n, func(ctx context.Context, _ int) Outcome {
			inst := pool[rand.Intn(len(pool))]
			attr := inst.Attrs[rand.Intn(len(inst.Attrs))]
			return o.exec.Update(ctx, ep.Entity, inst.URI, attr, payload.AttributeBody(ep, attr))
		})
		summaries = append(summaries, Summarize(OpUpdate, n, outcomes))
		o.sleep(o.cfg.BatchSettle)
	}
	return summaries
}

// benchmarkDelete pre-creates fresh disposable resources for each rung so
// deletions never deplete the shared READ/UPDATE pool.
func (o *Orchestrator) benchmarkDelete(ctx context.Context, ep *discovery.Endpoint) []Summary {
	summaries := make([]Summary, 0, len(o.cfg.BatchSizes))
	for _, n := range o.cfg.BatchSizes {
		ids := o.provision(ctx, ep, n)
		if len(ids) < n {
			o.logger.Warn("delete shortfall: fewer disposable resources than requested",
				zap.String("entity", ep.Entity),
				zap.Int("created", len(ids)),
				zap.Int("requested", n))
		}
		outcomes := RunBatch(ctx, len(ids), func(ctx context.Context, i int) Outcome {
			return o.exec.Delete(ctx, ep.Entity, ids[i])
		})
		summaries = append(summaries, Summarize(OpDelete, n, outcomes))
		o.sleep(o.cfg.BatchSettle)
	}
	return summaries
}

// provision concurrently creates n disposable resources and returns the URIs
// of the ones that succeeded.
func (o *Orchestrator) provision(ctx context.Context, ep *discovery.Endpoint, n int) []string {
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uri, err := o.exec.CreateResource(ctx, ep.Entity, payload.Body(ep))
			if err != nil {
				o.logger.Debug("disposable create failed", zap.String("entity", ep.Entity), zap.Error(err))
				return
			}
			ids[i] = uri
		}(i)
	}
	wg.Wait()

	out := make([]string, 0, n)
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
