// Package auth memverifikasi kredensial admin dan mengelola sesi opaque
// berbasis redis. Cookie hanya membawa token acak; isi sesi tinggal di
// server dan kedaluwarsa 24 jam.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/paskalshop/paskal-shop/internal/redisx"
	"github.com/paskalshop/paskal-shop/internal/shop"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookie = "admin-session"

type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Service struct {
	log    *logrus.Logger
	admins shop.AdminStore
	rdb    *redis.Client
}

func NewService(log *logrus.Logger, admins shop.AdminStore, rdb *redis.Client) *Service {
	return &Service{log: log, admins: admins, rdb: rdb}
}

// Login mencocokkan password bcrypt lalu menerbitkan token sesi.
func (s *Service) Login(ctx context.Context, username, password string) (*shop.Admin, string, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shop.ErrAdminNotFound) {
			return nil, "", shop.ErrUnauthorized
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, "", shop.ErrUnauthorized
	}

	token := uuid.NewString()
	sess := Session{ID: admin.ID, Username: admin.Username, Name: admin.Name}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, "", err
	}
	key := fmt.Sprintf(redisx.KeyAdminSession, token)
	if err := s.rdb.Set(ctx, key, b, redisx.TTLAdminSession).Err(); err != nil {
		return nil, "", err
	}

	s.log.WithField("admin", admin.Username).Info("admin logged in")
	return admin, token, nil
}

// Verify menukar token dengan admin. Admin yang sudah dihapus membuat
// sesi lamanya tidak berlaku.
func (s *Service) Verify(ctx context.Context, token string) (*shop.Admin, error) {
	if token == "" {
		return nil, shop.ErrUnauthorized
	}
	key := fmt.Sprintf(redisx.KeyAdminSession, token)
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, shop.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, shop.ErrUnauthorized
	}

	admin, err := s.admins.GetByID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, shop.ErrAdminNotFound) {
			return nil, shop.ErrUnauthorized
		}
		return nil, err
	}
	return admin, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, fmt.Sprintf(redisx.KeyAdminSession, token)).Err()
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}
