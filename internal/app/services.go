package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/psyconnect/psyconnect_backend/config"
	"github.com/psyconnect/psyconnect_backend/internal/events"
	"github.com/psyconnect/psyconnect_backend/internal/service/appointment"
	"github.com/psyconnect/psyconnect_backend/internal/service/casefile"
	"github.com/psyconnect/psyconnect_backend/internal/service/directory"
	"github.com/psyconnect/psyconnect_backend/internal/service/scheduling"
	"github.com/psyconnect/psyconnect_backend/internal/store"
	"github.com/psyconnect/psyconnect_backend/pkg/crypto"
	pasetotoken "github.com/psyconnect/psyconnect_backend/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideStores,
		ProvideEventPublisher,
		ProvideCaseService,
		ProvideAppointmentService,
		ProvideSchedulingService,
		ProvideDirectoryService,
		ProvidePasetoManager,
	),
)

// Stores bundles the Postgres-backed stores so a single provider can
// hand them out.
type Stores struct {
	fx.Out

	Appointments *store.AppointmentStore
	Availability *store.AvailabilityStore
	Cases        *store.CaseStore
	Users        *store.UserStore
}

func ProvideStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Appointments: store.NewAppointmentStore(pool),
		Availability: store.NewAvailabilityStore(pool),
		Cases:        store.NewCaseStore(pool),
		Users:        store.NewUserStore(pool),
	}
}

func ProvideEventPublisher(nc *nats.Conn) events.Publisher {
	return events.NewNatsPublisher(nc)
}

func ProvideCaseService(st *store.CaseStore, cfg *config.Config) (casefile.Service, error) {
	var notesKey []byte
	if cfg.Authentication.EncryptionKey != "" {
		key, err := crypto.KeyFromHex(cfg.Authentication.EncryptionKey)
		if err != nil {
			return nil, err
		}
		notesKey = key
	}
	return casefile.New(st, notesKey), nil
}

func ProvideAppointmentService(
	st *store.AppointmentStore,
	av *store.AvailabilityStore,
	users *store.UserStore,
	cases casefile.Service,
	pub events.Publisher,
) appointment.Service {
	return appointment.New(st, av, users, cases, pub)
}

func ProvideSchedulingService(st *store.AvailabilityStore) scheduling.Service {
	return scheduling.New(st)
}

func ProvideDirectoryService(st *store.UserStore) directory.Service {
	return directory.New(st)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
