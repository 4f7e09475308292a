package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/domain/models"
	"github.com/kdiomande/stockroom/internal/repository/gateway"
	"github.com/kdiomande/stockroom/internal/repository/mongodb"
)

// Service owns the master-data lists (categories, warehouses, units,
// suppliers, customers). Reads go through the local cache mirror when it is
// fresh; the spreadsheet gateway remains the system of record and every
// write passes straight through to it.
type Service struct {
	gateway gateway.Client
	cache   mongodb.CacheRepository // nil disables the mirror
	ttl     time.Duration
	logger  *zap.Logger
}

// NewService wires a catalog service. cache may be nil.
func NewService(gw gateway.Client, cache mongodb.CacheRepository, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{gateway: gw, cache: cache, ttl: ttl, logger: logger}
}

// List returns the active records of one master-data kind, read-through.
// When the gateway is unreachable a stale cached snapshot is served rather
// than failing the caller.
func (s *Service) List(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, error) {
	if !models.ValidEntityKind(kind) {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	if s.cache != nil {
		records, fetchedAt, err := s.cache.GetSnapshot(ctx, kind)
		if err == nil && time.Since(fetchedAt) < s.ttl {
			return records, nil
		}
	}

	records, err := s.gateway.ListEntity(ctx, kind)
	if err != nil {
		if s.cache != nil {
			if stale, fetchedAt, cacheErr := s.cache.GetSnapshot(ctx, kind); cacheErr == nil {
				s.logger.Warn("serving stale master-data snapshot",
					zap.String("kind", string(kind)),
					zap.Time("fetched_at", fetchedAt),
					zap.Error(err))
				return stale, nil
			}
		}
		return nil, fmt.Errorf("load %s list: %w", kind, err)
	}

	s.storeSnapshot(ctx, kind, records)
	return records, nil
}

// MasterSnapshot assembles the read-only view the import pipeline consumes.
// Customer data is intentionally absent; imports never touch customers.
func (s *Service) MasterSnapshot(ctx context.Context) (models.MasterSnapshot, error) {
	var snapshot models.MasterSnapshot
	for _, load := range []struct {
		kind models.EntityKind
		dst  *[]models.MasterRecord
	}{
		{models.EntityCategory, &snapshot.Categories},
		{models.EntityWarehouse, &snapshot.Warehouses},
		{models.EntityUnit, &snapshot.Units},
		{models.EntitySupplier, &snapshot.Suppliers},
	} {
		records, err := s.List(ctx, load.kind)
		if err != nil {
			return models.MasterSnapshot{}, err
		}
		*load.dst = records
	}
	return snapshot, nil
}

// RefreshAll re-fetches every master-data list from the gateway and rewrites
// the cache mirror. Run on a schedule.
func (s *Service) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, kind := range models.MasterKinds {
		records, err := s.gateway.ListEntity(ctx, kind)
		if err != nil {
			s.logger.Error("master-data refresh failed", zap.String("kind", string(kind)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.storeSnapshot(ctx, kind, records)
	}
	return firstErr
}

// Insert writes a new master-data record through to the gateway. Record ids
// are assigned by the storage driver, not here: the Apps Script gateway mints
// its own id on insert and the sheets driver fills one in before writing the
// row. The returned record therefore carries an empty ID; callers pick up the
// stored id from the next List.
func (s *Service) Insert(ctx context.Context, kind models.EntityKind, record models.MasterRecord) (models.MasterRecord, error) {
	if !models.ValidEntityKind(kind) {
		return models.MasterRecord{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	if record.Name == "" {
		return models.MasterRecord{}, fmt.Errorf("%s name must not be empty", kind)
	}

	record.ID = ""
	record.Active = true
	if err := s.gateway.InsertEntity(ctx, kind, record); err != nil {
		return models.MasterRecord{}, err
	}
	s.invalidate(ctx, kind)
	return record, nil
}

// Update rewrites an existing master-data record through to the gateway.
func (s *Service) Update(ctx context.Context, kind models.EntityKind, record models.MasterRecord) error {
	if !models.ValidEntityKind(kind) {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	if err := s.gateway.UpdateEntity(ctx, kind, record); err != nil {
		return err
	}
	s.invalidate(ctx, kind)
	return nil
}

// Delete soft-deletes a master-data record through the gateway.
func (s *Service) Delete(ctx context.Context, kind models.EntityKind, id string) error {
	if !models.ValidEntityKind(kind) {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	if err := s.gateway.DeleteEntity(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx, kind)
	return nil
}

func (s *Service) storeSnapshot(ctx context.Context, kind models.EntityKind, records []models.MasterRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutSnapshot(ctx, kind, records); err != nil {
		s.logger.Warn("failed mirroring master-data snapshot", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// invalidate refreshes the mirror after a write so the next read does not
// serve the pre-write snapshot for a full TTL.
func (s *Service) invalidate(ctx context.Context, kind models.EntityKind) {
	if s.cache == nil {
		return
	}
	records, err := s.gateway.ListEntity(ctx, kind)
	if err != nil {
		s.logger.Warn("failed refreshing snapshot after write", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	s.storeSnapshot(ctx, kind, records)
}
