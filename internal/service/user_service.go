package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/model"
)

// UserService backs the admin user table.
type UserService struct {
	resource
}

func NewUserService(api *apiclient.Client, store cache.Store, ttl time.Duration, log zerolog.Logger) *UserService {
	return &UserService{resource: newResource(api, store, ttl, log, "user_service")}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if _, err := s.query(ctx, "", "/users", nil, &users, cache.TagUsers); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole promotes or demotes a user. The change reaches the gate only when the
// user's next credential is issued.
func (s *UserService) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	var u model.User
	body := model.UpdateRoleRequest{Role: role}
	if err := s.mutate(ctx, http.MethodPatch, itemPath("/users", id)+"/role", body, &u, cache.TagUsers, cache.TagStats); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodDelete, itemPath("/users", id), nil, nil, cache.TagUsers, cache.TagStats)
}
