package mapping_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"idbridge/internal/access"
	"idbridge/internal/mapping"
	mappingstore "idbridge/internal/mapping/store"
	providerstore "idbridge/internal/providers/store"
	"idbridge/internal/schema"
	"idbridge/internal/validation"
	dErrors "idbridge/pkg/domain-errors"
	"idbridge/pkg/platform/sentinel"
	"idbridge/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store   *mappingstore.InMemory
	service *mapping.Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	validation.SuppressProviderCheckUnderTest = false
	s.T().Cleanup(func() { validation.SuppressProviderCheckUnderTest = true })

	registry, err := access.NewCasbinRegistry(access.DefaultPolicy())
	s.Require().NoError(err)
	gate, err := access.New(registry)
	s.Require().NoError(err)

	s.store = mappingstore.NewInMemory()
	s.service = mapping.NewService(s.store, providerstore.NewInMemory("Acme", "Okta"), gate,
		mapping.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.ctx = testutil.PrincipalContext("005xx0000000001", "admin")
}

func (s *ServiceSuite) TestSaveBatchFlagsOnlyUnknownProvider() {
	batch := []*mapping.Mapping{
		{ProviderName: "Acme", PrincipalID: "u1", TargetIdentifier: "T1"},
		{ProviderName: "Unregistered", PrincipalID: "u2", TargetIdentifier: "T2"},
		{ProviderName: "okta", PrincipalID: "u3", TargetIdentifier: "T3"},
	}

	errs, err := s.service.SaveBatch(s.ctx, batch)
	s.Require().NoError(err)
	s.Require().Len(errs, 3)
	s.NoError(errs[0])
	s.Error(errs[1])
	s.NoError(errs[2])

	_, err = s.store.FindByKey(s.ctx, "Acme", "u1")
	s.NoError(err)
	_, err = s.store.FindByKey(s.ctx, "Unregistered", "u2")
	s.Error(err)
	_, err = s.store.FindByKey(s.ctx, "okta", "u3")
	s.NoError(err)
}

func (s *ServiceSuite) TestSaveBatchDerivesCompositeKey() {
	batch := []*mapping.Mapping{{ProviderName: "Acme", PrincipalID: "u1", TargetIdentifier: "T1"}}

	errs, err := s.service.SaveBatch(s.ctx, batch)
	s.Require().NoError(err)
	s.NoError(errs[0])
	s.Equal("Acme_u1", batch[0].UniqueKey)

	found, err := s.store.FindByKey(s.ctx, "Acme", "u1")
	s.Require().NoError(err)
	s.Equal("Acme_u1", found.UniqueKey)
	s.False(found.CreatedAt.IsZero())
}

func (s *ServiceSuite) TestSaveBatchRejectsBlankTarget() {
	errs, err := s.service.SaveBatch(s.ctx, []*mapping.Mapping{{ProviderName: "Acme", PrincipalID: "u1"}})
	s.Require().NoError(err)
	s.True(dErrors.HasCode(errs[0], dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSaveBatchRequiresSaveAccess() {
	ctx := testutil.PrincipalContext("005xx0000012345", "integration")
	_, err := s.service.SaveBatch(ctx, []*mapping.Mapping{{ProviderName: "Acme", PrincipalID: "u1", TargetIdentifier: "T1"}})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestSaveBatchReportsBlankProviderAsBlankField() {
	errs, err := s.service.SaveBatch(s.ctx, []*mapping.Mapping{
		{ProviderName: "  ", PrincipalID: "u1", TargetIdentifier: "T1"},
		{ProviderName: "Acme", PrincipalID: "u2", TargetIdentifier: "T2"},
	})
	s.Require().NoError(err)
	s.Require().Len(errs, 2)

	blank, ok := validation.BlankField(errs[0])
	s.Require().True(ok, "expected a blank-field error, got %v", errs[0])
	s.Equal(schema.FieldProviderName, blank.Field)
	s.NoError(errs[1])
}

func (s *ServiceSuite) TestSaveBatchKeepsLoginDetailsOnResave() {
	batch := func(target string) []*mapping.Mapping {
		return []*mapping.Mapping{{ProviderName: "Acme", PrincipalID: "u1", TargetIdentifier: target}}
	}
	errs, err := s.service.SaveBatch(s.ctx, batch("T1"))
	s.Require().NoError(err)
	s.Require().NoError(errs[0])
	for i := 0; i < 2; i++ {
		_, err := s.store.RecordLogin(s.ctx, "Acme", "u1", time.Now())
		s.Require().NoError(err)
	}

	errs, err = s.service.SaveBatch(s.ctx, batch("T2"))
	s.Require().NoError(err)
	s.Require().NoError(errs[0])

	found, err := s.store.FindByKey(s.ctx, "Acme", "u1")
	s.Require().NoError(err)
	s.Equal("T2", found.TargetIdentifier)
	s.Equal(2, found.LoginCount)
}

func (s *ServiceSuite) TestSaveBatchFlagsUniqueKeyCollision() {
	registry, err := access.NewCasbinRegistry(access.DefaultPolicy())
	s.Require().NoError(err)
	gate, err := access.New(registry)
	s.Require().NoError(err)
	service := mapping.NewService(s.store, providerstore.NewInMemory("Acme", "Acme_Prod"), gate,
		mapping.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	errs, err := service.SaveBatch(s.ctx, []*mapping.Mapping{
		{ProviderName: "Acme", PrincipalID: "Prod_u1", TargetIdentifier: "T1"},
		{ProviderName: "Acme_Prod", PrincipalID: "u1", TargetIdentifier: "T2"},
	})
	s.Require().NoError(err)
	s.NoError(errs[0])
	s.ErrorIs(errs[1], sentinel.ErrConflict)

	found, err := s.store.FindByKey(s.ctx, "Acme", "Prod_u1")
	s.Require().NoError(err)
	s.Equal("T1", found.TargetIdentifier)
	_, err = s.store.FindByKey(s.ctx, "Acme_Prod", "u1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
