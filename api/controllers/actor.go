package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/karimnasser/propflow-backend/api/middleware"
	"github.com/karimnasser/propflow-backend/internal/checkouts"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
)

// requestActor rebuilds the authenticated actor from the request context.
func requestActor(r *http.Request) (checkouts.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return checkouts.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return checkouts.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return checkouts.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return checkouts.Actor{UserID: userID, Role: role}, nil
}
