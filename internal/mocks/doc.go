// Package mocks provides shared test doubles for the store interfaces and
// the auth services.
//
// Each mock has function fields (CreateFn, GetByIDFn, ...) that override a
// method when set. Unset methods fall back to an in-memory implementation, so
// handler tests can exercise a realistic flow without a database:
//
//	users := mocks.NewMockUserStore()
//	users.CreateFn = func(ctx context.Context, u *domain.User) error {
//	    return store.ErrEmailExists
//	}
package mocks
