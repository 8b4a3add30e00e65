package user

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const OptionsKeyPrefix = "users:options:"

func GetOptionsKey(companyID string) string {
	return OptionsKeyPrefix + companyID
}

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetOptions(ctx context.Context, companyID string) ([]UserOptionResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// GetOptions mengembalikan daftar user aktif untuk pemilihan approver.
// Data master, jadi aman di-cache 1 jam.
func (s *service) GetOptions(ctx context.Context, companyID string) ([]UserOptionResponse, error) {
	cacheKey := GetOptionsKey(companyID)

	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []UserOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight agar hanya satu pengisi cache saat traffic tinggi
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		users, err := s.repo.FindOptionsByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}

		resp := make([]UserOptionResponse, len(users))
		for i, u := range users {
			resp[i] = UserOptionResponse{
				ID:       u.ID.String(),
				FullName: u.FullName,
				Email:    u.Email,
				Role:     u.Role,
			}
		}

		// 3. Simpan ke Redis
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]UserOptionResponse), nil
}
