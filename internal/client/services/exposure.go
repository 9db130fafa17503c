package services

import (
	"context"

	"github.com/mkowalczyk/allerlog/internal/client/models"
	"github.com/mkowalczyk/allerlog/internal/common"
)

// ExposureTypeService manages the catalog of exposure types an entry can
// reference.
type ExposureTypeService interface {
	List(ctx context.Context) ([]models.ExposureType, error)
	Create(ctx context.Context, t models.NewExposureType) (models.ExposureType, error)
	GetByID(ctx context.Context, id string) (models.ExposureType, error)
	// NameToID returns a name-keyed index of the catalog for resolving
	// user-typed exposure names.
	NameToID(ctx context.Context) (map[string]string, error)
}

type exposureTypeService struct {
	api HTTPClient
}

// NewExposureTypeService constructs an ExposureTypeService over the
// transport.
func NewExposureTypeService(api HTTPClient) ExposureTypeService {
	return &exposureTypeService{api: api}
}

func (s *exposureTypeService) List(ctx context.Context) ([]models.ExposureType, error) {
	var types []models.ExposureType
	if err := s.api.Get(ctx, common.PathExposureTypes, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (s *exposureTypeService) Create(ctx context.Context, t models.NewExposureType) (models.ExposureType, error) {
	var created models.ExposureType
	if err := s.api.Post(ctx, common.PathExposureTypes, t, &created); err != nil {
		return models.ExposureType{}, err
	}
	return created, nil
}

func (s *exposureTypeService) GetByID(ctx context.Context, id string) (models.ExposureType, error) {
	var t models.ExposureType
	if err := s.api.Get(ctx, common.PathExposureTypes+"/"+id, &t); err != nil {
		return models.ExposureType{}, err
	}
	return t, nil
}

func (s *exposureTypeService) NameToID(ctx context.Context) (map[string]string, error) {
	types, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(types))
	for _, t := range types {
		index[t.Name] = t.ID
	}
	return index, nil
}
