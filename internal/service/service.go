// Package service implements the Connect handlers for bills and receipt drafts.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/buriane/taghiane/internal/middleware"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateMsg checks a request message against its struct tags.
func validateMsg(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid fields: %s", strings.Join(fields, ", ")))
	}
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// requireUser returns the authenticated user ID or an Unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}
