package airquality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/aqi"
	"github.com/jengzang/greenguardian-backend-go/internal/cache"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SampleTTL is how long a fetched sample is served from cache
const SampleTTL = 10 * time.Minute

// CacheKey rounds coordinates to three decimals (about 100 m)
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("air:%.3f,%.3f", lat, lon)
}

// Service serves AQI results from cached or freshly fetched samples
type Service struct {
	fetcher Fetcher
	cache   *cache.TTLCache
	group   singleflight.Group
	log     *zap.Logger
}

// NewService creates an air-quality service
func NewService(fetcher Fetcher, c *cache.TTLCache, log *zap.Logger) *Service {
	return &Service{fetcher: fetcher, cache: c, log: log}
}

// Sample returns the cached sample for the location or fetches a new one.
// Concurrent calls for the same key share one upstream request.
func (s *Service) Sample(ctx context.Context, lat, lon float64) (*models.AirSample, error) {
	key := CacheKey(lat, lon)

	var cached models.AirSample
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("Air sample cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		sample, err := s.fetcher.Fetch(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, sample, SampleTTL); err != nil {
			s.log.Warn("Air sample cache write failed", zap.String("key", key), zap.Error(err))
		}
		return sample, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.AirSample), nil
}

// Current returns the live AQI for a location.
// Fetch failures and samples without usable readings fall back to
// aqi.MockFromCoords; other errors are returned.
func (s *Service) Current(ctx context.Context, lat, lon float64) (aqi.Result, *models.AirSample, error) {
	sample, err := s.Sample(ctx, lat, lon)
	if err != nil {
		if !errors.Is(err, apperr.ErrFetch) {
			return aqi.Result{}, nil, err
		}
		s.log.Info("Live air quality unavailable, using fallback",
			zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return aqi.MockFromCoords(lat, lon), nil, nil
	}

	res, ok := aqi.Overall(aqi.Readings{PM25: sample.PM25, O3: sample.O3})
	if !ok {
		return aqi.MockFromCoords(lat, lon), sample, nil
	}
	return res, sample, nil
}
