package identifiers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/models"
)

// LookupResponse lists the entities an identifier lookup matched. An unknown
// identifier yields an empty list, not a 404.
type LookupResponse[T any] struct {
	Results []T `json:"results"`
}

// LookupHandler serves GET <kind>/identifier?id=|type=&value=|value= for
// entities of kind T.
func LookupHandler[T models.IdentifierOwner](r *Resolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		params := LookupQuery{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}

		owners, err := ResolveByIdentifier[T](ctx, r, params.Input())
		if err != nil {
			return errors.WithStack(AsValidationError(err))
		}
		if owners == nil {
			owners = []T{}
		}

		return errors.WithStack(c.JSON(http.StatusOK, &LookupResponse[T]{Results: owners}))
	}
}

// ResolveManyHandler serves POST <kind>/identifiers, returning each entity of
// kind T associated with any of the submitted identifiers once.
func ResolveManyHandler[T models.IdentifierOwner](r *Resolver) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		params := ResolveManyPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}

		owners, err := ResolveByIdentifiers[T](ctx, r, params.Identifiers)
		if err != nil {
			return errors.WithStack(AsValidationError(err))
		}
		if owners == nil {
			owners = []T{}
		}

		return errors.WithStack(c.JSON(http.StatusOK, &LookupResponse[T]{Results: owners}))
	}
}

// Sync attaches add to owner and then detaches remove from it.
func (r *Resolver) Sync(ctx context.Context, owner models.IdentifierOwner, add, remove []Input) error {
	if _, err := r.Attach(ctx, owner, add); err != nil {
		return AsValidationError(err)
	}
	if err := r.Detach(ctx, owner, remove); err != nil {
		return AsValidationError(err)
	}
	return nil
}
