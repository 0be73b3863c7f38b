//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"idbridge/internal/providers/store"
	"idbridge/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "auth_providers"))
}

func (s *PostgresStoreSuite) TestBatchLookup() {
	ctx := context.Background()
	s.Require().NoError(s.store.Register(ctx, "Acme"))
	s.Require().NoError(s.store.Register(ctx, "Okta"))
	s.Require().NoError(s.store.Register(ctx, "Acme"))

	found, err := s.store.Existing(ctx, []string{"ACME", "okta", "ghost"})
	s.Require().NoError(err)
	s.Equal(map[string]bool{"acme": true, "okta": true}, found)

	s.Require().NoError(s.store.Remove(ctx, "acme"))
	found, err = s.store.Existing(ctx, []string{"acme"})
	s.Require().NoError(err)
	s.Empty(found)
}
