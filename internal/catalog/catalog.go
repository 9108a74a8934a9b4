// Package catalog provides the packages and upsells offered by the park.
package catalog

import (
	"context"
	"fmt"

	"github.com/skypark/bookings/internal/domain"
)

// Source loads a full catalog snapshot.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is an immutable catalog in display order. It satisfies
// pricing.Catalog.
type Snapshot struct {
	packages []domain.Package
	upsells  []domain.Upsell
	pkgByID  map[string]int
	upByID   map[string]int
}

func NewSnapshot(packages []domain.Package, upsells []domain.Upsell) *Snapshot {
	s := &Snapshot{
		packages: append([]domain.Package(nil), packages...),
		upsells:  append([]domain.Upsell(nil), upsells...),
		pkgByID:  make(map[string]int, len(packages)),
		upByID:   make(map[string]int, len(upsells)),
	}
	for i, p := range s.packages {
		s.pkgByID[p.ID] = i
	}
	for i, u := range s.upsells {
		s.upByID[u.ID] = i
	}
	return s
}

// Package returns a copy of the package, or nil when unknown.
func (s *Snapshot) Package(id string) *domain.Package {
	if s == nil {
		return nil
	}
	i, ok := s.pkgByID[id]
	if !ok {
		return nil
	}
	p := s.packages[i]
	return &p
}

func (s *Snapshot) Upsell(id string) *domain.Upsell {
	if s == nil {
		return nil
	}
	i, ok := s.upByID[id]
	if !ok {
		return nil
	}
	u := s.upsells[i]
	return &u
}

// Packages lists bookable packages, excluding add-ons.
func (s *Snapshot) Packages() []domain.Package {
	return s.filter(func(p domain.Package) bool { return p.Category != domain.CategoryAddon })
}

// Addons lists the per-guest add-ons.
func (s *Snapshot) Addons() []domain.Package {
	return s.filter(func(p domain.Package) bool { return p.Category == domain.CategoryAddon })
}

func (s *Snapshot) Upsells() []domain.Upsell {
	if s == nil {
		return nil
	}
	return append([]domain.Upsell(nil), s.upsells...)
}

func (s *Snapshot) filter(keep func(domain.Package) bool) []domain.Package {
	if s == nil {
		return nil
	}
	out := make([]domain.Package, 0, len(s.packages))
	for _, p := range s.packages {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Repository is the storage a RepoSource reads from.
type Repository interface {
	ListPackages(ctx context.Context) ([]domain.Package, error)
	ListUpsells(ctx context.Context) ([]domain.Upsell, error)
}

// RepoSource builds snapshots from a Repository.
type RepoSource struct {
	repo Repository
}

func NewRepoSource(repo Repository) *RepoSource {
	return &RepoSource{repo: repo}
}

func (s *RepoSource) Load(ctx context.Context) (*Snapshot, error) {
	pkgs, err := s.repo.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	ups, err := s.repo.ListUpsells(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list upsells: %w", err)
	}
	return NewSnapshot(pkgs, ups), nil
}
