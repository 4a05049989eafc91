package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of docdex.SourceService.
type SourceService struct {
	CreateSourceFn     func(ctx context.Context, source *docdex.Source) error
	FindSourceByIDFn   func(ctx context.Context, id string) (*docdex.Source, error)
	FindSourceByNameFn func(ctx context.Context, name string) (*docdex.Source, error)
	FindSourcesFn      func(ctx context.Context, filter docdex.SourceFilter) ([]*docdex.Source, error)
	UpdateSourceFn     func(ctx context.Context, id string, upd docdex.SourceUpdate) (*docdex.Source, error)
	DeleteSourceFn     func(ctx context.Context, id string) error
}

func (s *SourceService) CreateSource(ctx context.Context, source *docdex.Source) error {
	return s.CreateSourceFn(ctx, source)
}

func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*docdex.Source, error) {
	return s.FindSourceByIDFn(ctx, id)
}

func (s *SourceService) FindSourceByName(ctx context.Context, name string) (*docdex.Source, error) {
	return s.FindSourceByNameFn(ctx, name)
}

func (s *SourceService) FindSources(ctx context.Context, filter docdex.SourceFilter) ([]*docdex.Source, error) {
	return s.FindSourcesFn(ctx, filter)
}

func (s *SourceService) UpdateSource(ctx context.Context, id string, upd docdex.SourceUpdate) (*docdex.Source, error) {
	return s.UpdateSourceFn(ctx, id, upd)
}

func (s *SourceService) DeleteSource(ctx context.Context, id string) error {
	return s.DeleteSourceFn(ctx, id)
}
