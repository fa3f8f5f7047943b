package services

import (
	"nusakalaAPI/internal/province"
)

type ProvinceService struct {
	catalog *province.Catalog
}

func NewProvinceService(catalog *province.Catalog) *ProvinceService {
	return &ProvinceService{catalog: catalog}
}

// List returns every province, or only those of one island group.
func (s *ProvinceService) List(island string) []province.Province {
	if island == "" {
		return s.catalog.All()
	}
	return s.catalog.ByIsland(island)
}

func (s *ProvinceService) Get(slug string) (*province.Province, error) {
	p, ok := s.catalog.Lookup(slug)
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
