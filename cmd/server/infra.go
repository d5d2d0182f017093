package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"idproof/internal/kyc/channel"
	"idproof/internal/kyc/handoff"
	"idproof/internal/kyc/ports"
	"idproof/internal/kyc/store/codestate"
	"idproof/internal/platform/config"
	"idproof/internal/platform/postgres"
	"idproof/internal/platform/redis"
	"idproof/pkg/platform/audit"
	auditmemory "idproof/pkg/platform/audit/store/memory"
	auditpostgres "idproof/pkg/platform/audit/store/postgres"
	"idproof/pkg/platform/httputil"
)

// infra holds the optional external backends. Each one falls back to an in-process
// implementation when it is not configured.
type infra struct {
	codeStore  channel.CodeStateStore
	auditStore audit.Store
	handoff    ports.HandoffPort

	redis *redis.Client
	db    *sql.DB
	kafka *handoff.Kafka
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	deps := &infra{}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		deps.redis = rc
		deps.codeStore = codestate.NewRedisStore(rc.Client)
		log.Info("code state stored in redis")
	} else {
		deps.codeStore = codestate.NewInMemoryStore()
		log.Info("code state stored in memory")
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		deps.Close(log)
		return nil, err
	}
	if db != nil {
		deps.db = db
		store := auditpostgres.New(db)
		if err := store.Migrate(ctx); err != nil {
			deps.Close(log)
			return nil, err
		}
		deps.auditStore = store
		log.Info("audit trail stored in postgres")
	} else {
		deps.auditStore = auditmemory.NewInMemoryStore()
		log.Warn("audit trail stored in memory; it is lost on restart")
	}

	sinks := handoff.Fanout{handoff.NewLog(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := handoff.NewKafka(ctx, cfg.Kafka, handoff.WithKafkaLogger(log))
		if err != nil {
			deps.Close(log)
			return nil, err
		}
		deps.kafka = k
		sinks = append(sinks, k)
		log.Info("results handed off to kafka", "topic", cfg.Kafka.Topic)
	}
	deps.handoff = sinks

	return deps, nil
}

// Close releases the backends in reverse order of construction.
func (d *infra) Close(log *slog.Logger) {
	if d.kafka != nil {
		d.kafka.Close()
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether every configured backend answers.
func (d *infra) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK
	check := func(name string, err error) {
		if err != nil {
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			return
		}
		checks[name] = "ok"
	}
	if d.redis != nil {
		check("redis", d.redis.Health(ctx))
	}
	if d.db != nil {
		check("postgres", d.db.PingContext(ctx))
	}
	if d.kafka != nil {
		check("kafka", d.kafka.Ping(ctx))
	}

	httputil.WriteJSON(w, status, checks)
}
