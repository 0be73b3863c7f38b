package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idbridge/internal/access"
	auditmocks "idbridge/internal/auditlog/mocks"
	auditstore "idbridge/internal/auditlog/store"
	"idbridge/internal/mapping"
	mappingstore "idbridge/internal/mapping/store"
	"idbridge/internal/pipeline"
	"idbridge/internal/pipeline/bus/memory"
	"idbridge/internal/schema"
	"idbridge/internal/validation"
	id "idbridge/pkg/domain"
	dErrors "idbridge/pkg/domain-errors"
	"idbridge/pkg/requestcontext"
	"idbridge/pkg/testutil"
)

type PipelineSuite struct {
	suite.Suite
	gate      *access.Gate
	mappings  *mappingstore.InMemory
	logs      *auditstore.InMemory
	bus       *memory.Bus
	publisher *pipeline.Publisher
	ctx       context.Context
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGate(s *suite.Suite, policy string) *access.Gate {
	registry, err := access.NewCasbinRegistry(policy)
	s.Require().NoError(err)
	gate, err := access.New(registry, access.WithLogger(discard()))
	s.Require().NoError(err)
	return gate
}

func (s *PipelineSuite) SetupTest() {
	s.gate = newGate(&s.Suite, access.DefaultPolicy())
	s.mappings = mappingstore.NewInMemory()
	s.logs = auditstore.NewInMemory()
	s.wire(s.gate, schema.Defaults())
	s.ctx = testutil.PrincipalContext("005xx0000012345", "integration")
}

func (s *PipelineSuite) wire(consumerGate pipeline.AccessChecker, limits schema.Limits) {
	consumer, err := pipeline.NewConsumer(s.mappings, s.logs, consumerGate, pipeline.WithConsumerLogger(discard()))
	s.Require().NoError(err)
	s.bus = memory.New(consumer.Router())
	s.publisher, err = pipeline.NewPublisher(s.bus, s.gate, limits, pipeline.WithLogger(discard()))
	s.Require().NoError(err)
}

func (s *PipelineSuite) seedMapping(provider, principal, target string) {
	now := time.Now()
	s.Require().NoError(s.mappings.Save(context.Background(), &mapping.Mapping{
		ID: uuid.New(), ProviderName: provider, PrincipalID: principal, TargetIdentifier: target,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *PipelineSuite) deliver() {
	s.Require().NoError(s.bus.Deliver(context.Background()))
}

func (s *PipelineSuite) TestLogValidation() {
	fields := []string{"Acme", "u1", "9f2c", "hello"}
	blanks := []string{"", "   "}

	for mask := 1; mask < 1<<len(fields); mask++ {
		for _, blank := range blanks {
			in := append([]string(nil), fields...)
			for i := range in {
				if mask&(1<<i) != 0 {
					in[i] = blank
				}
			}
			err := s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
				ProviderName: in[0], PrincipalID: in[1], LogID: in[2], Message: in[3],
			})
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			blankErr, ok := validation.BlankField(err)
			s.Require().True(ok)
			s.Equal(validation.KindLog, blankErr.Kind)
		}
	}
	s.Zero(s.bus.Pending(), "nothing is published for invalid input")
}

func (s *PipelineSuite) TestPublishReturnsBeforePersistence() {
	s.Require().NoError(s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
		ProviderName: "Acme", PrincipalID: "u1", LogID: "9f2c", Message: "hello",
	}))

	logs, err := s.logs.ListLogs(s.ctx, "Acme", "u1")
	s.Require().NoError(err)
	s.Empty(logs)
	s.Equal(1, s.bus.Pending())
}

func (s *PipelineSuite) TestLogPersistsExactValues() {
	s.wire(s.gate, schema.Static{
		schema.ObjectMappingLog: {schema.FieldLogID: 8, schema.FieldMessage: 5},
	})

	s.Run("value within limit is kept as is", func() {
		s.Require().NoError(s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
			ProviderName: "Acme", PrincipalID: "u1", LogID: "12345678", Message: "hello",
		}))
		s.deliver()

		logs, err := s.logs.ListLogs(s.ctx, "Acme", "u1")
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		s.Equal("12345678", logs[0].LogID)
		s.Equal("hello", logs[0].Message)
	})

	s.Run("over-length value keeps its prefix", func() {
		s.Require().NoError(s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
			ProviderName: "Acme", PrincipalID: "u2", LogID: "123456789", Message: "héllo wörld",
		}))
		s.deliver()

		logs, err := s.logs.ListLogs(s.ctx, "Acme", "u2")
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		s.Equal("12345678", logs[0].LogID)
		s.Equal("héllo", logs[0].Message)
	})
}

func (s *PipelineSuite) TestLogTouchesMapping() {
	s.Run("existing mapping references the new entry", func() {
		s.seedMapping("Acme", "u1", "U2")
		s.Require().NoError(s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
			ProviderName: "Acme", PrincipalID: "u1", LogID: "a", Message: "m",
		}))
		s.deliver()

		logs, err := s.logs.ListLogs(s.ctx, "Acme", "u1")
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		m, err := s.mappings.FindByKey(s.ctx, "Acme", "u1")
		s.Require().NoError(err)
		s.Require().NotNil(m.LastLogReference)
		s.Equal(logs[0].ID, *m.LastLogReference)
	})

	s.Run("missing mapping is neither an error nor created", func() {
		s.Require().NoError(s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
			ProviderName: "Acme", PrincipalID: "nobody", LogID: "a", Message: "m",
		}))
		s.deliver()

		_, err := s.mappings.FindByKey(s.ctx, "Acme", "nobody")
		s.Error(err)
		logs, err := s.logs.ListLogs(s.ctx, "Acme", "nobody")
		s.Require().NoError(err)
		s.Len(logs, 1)
	})
}

func (s *PipelineSuite) TestMappingTouch() {
	s.Run("missing mapping is a repeatable no-op", func() {
		for i := 0; i < 3; i++ {
			s.Require().NoError(s.publisher.PublishMappingTouch(s.ctx, pipeline.MappingTouchRequest{
				ProviderName: "Acme", PrincipalID: "ghost",
			}))
			s.deliver()
		}
		_, err := s.mappings.FindByKey(s.ctx, "Acme", "ghost")
		s.Error(err)
	})

	s.Run("N touches leave login_count N", func() {
		s.seedMapping("Acme", "u1", "U1")
		const n = 5
		var last time.Time
		for i := 0; i < n; i++ {
			s.Require().NoError(s.publisher.PublishMappingTouch(s.ctx, pipeline.MappingTouchRequest{
				ProviderName: "Acme", PrincipalID: "u1",
			}))
			s.deliver()

			m, err := s.mappings.FindByKey(s.ctx, "Acme", "u1")
			s.Require().NoError(err)
			s.Require().NotNil(m.LastLoginAt)
			s.False(m.LastLoginAt.Before(last), "last login is monotonic")
			last = *m.LastLoginAt
		}
		m, err := s.mappings.FindByKey(s.ctx, "Acme", "u1")
		s.Require().NoError(err)
		s.Equal(n, m.LoginCount)
	})

	s.Run("a delivered batch may carry many touches", func() {
		s.seedMapping("Acme", "u2", "U2")
		for i := 0; i < 3; i++ {
			s.Require().NoError(s.publisher.PublishMappingTouch(s.ctx, pipeline.MappingTouchRequest{
				ProviderName: "Acme", PrincipalID: "u2",
			}))
		}
		s.deliver()

		m, err := s.mappings.FindByKey(s.ctx, "Acme", "u2")
		s.Require().NoError(err)
		s.Equal(3, m.LoginCount)
	})
}

func (s *PipelineSuite) TestLoginHistory() {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Run("optional fields are null when blank", func() {
		s.Require().NoError(s.publisher.PublishLoginHistory(s.ctx, pipeline.LoginHistoryRequest{
			ProviderName: "Acme", PrincipalID: "u1", FlowType: "initial", Timestamp: at, Success: true,
			ProviderType: "  ", Info: "",
		}))
		s.deliver()

		rows, err := s.logs.ListLoginHistory(s.ctx, "Acme", "u1")
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(id.FlowTypeInitial, rows[0].FlowType)
		s.True(rows[0].Timestamp.Equal(at))
		s.True(rows[0].Success)
		s.Nil(rows[0].ProviderType)
		s.Nil(rows[0].Info)
	})

	s.Run("info is truncated to the column size", func() {
		s.Require().NoError(s.publisher.PublishLoginHistory(s.ctx, pipeline.LoginHistoryRequest{
			ProviderName: "Acme", PrincipalID: "u2", FlowType: "Refresh", Timestamp: at,
			ProviderType: "OpenIdConnect", Info: strings.Repeat("x", 2000),
		}))
		s.deliver()

		rows, err := s.logs.ListLoginHistory(s.ctx, "Acme", "u2")
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Require().NotNil(rows[0].Info)
		s.Len(*rows[0].Info, 1024)
		s.Equal("OpenIdConnect", *rows[0].ProviderType)
	})

	s.Run("timestamp is required", func() {
		err := s.publisher.PublishLoginHistory(s.ctx, pipeline.LoginHistoryRequest{
			ProviderName: "Acme", PrincipalID: "u1", FlowType: "Initial",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown flow type is rejected", func() {
		err := s.publisher.PublishLoginHistory(s.ctx, pipeline.LoginHistoryRequest{
			ProviderName: "Acme", PrincipalID: "u1", FlowType: "Sideways", Timestamp: at,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *PipelineSuite) TestPublisherAccess() {
	ctx := testutil.PrincipalContext("005xx0000099999", "guest")
	err := s.publisher.PublishLog(ctx, pipeline.LogRequest{
		ProviderName: "Acme", PrincipalID: "u1", LogID: "a", Message: "m",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Zero(s.bus.Pending())
}

func (s *PipelineSuite) TestConsumerAccessDeniedAbortsWholeBatch() {
	// the writer may create log entries but not update mappings
	writerGate := newGate(&s.Suite, `
p, role:event-writer, mapping_logs, create
p, role:event-writer, mapping_logs.*, create
`)
	s.wire(writerGate, schema.Defaults())
	s.seedMapping("Acme", "u1", "U1")

	for _, logID := range []string{"a", "b", "c"} {
		s.Require().NoError(s.publisher.PublishLog(s.ctx, pipeline.LogRequest{
			ProviderName: "Acme", PrincipalID: "u1", LogID: logID, Message: "m",
		}))
	}
	err := s.bus.Deliver(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Contains(err.Error(), "mapping log reference update")

	logs, err := s.logs.ListLogs(s.ctx, "Acme", "u1")
	s.Require().NoError(err)
	s.Empty(logs, "no entry of the batch is written")
}

func (s *PipelineSuite) TestConsumerRunsAsWriter() {
	var seen []string
	recorder := pipeline.AccessChecker(accessFunc(func(ctx context.Context, check access.Check) error {
		seen = append(seen, requestcontext.Principal(ctx).ID)
		return nil
	}))
	s.wire(recorder, schema.Defaults())

	s.Require().NoError(s.publisher.PublishMappingTouch(s.ctx, pipeline.MappingTouchRequest{ProviderName: "Acme", PrincipalID: "u1"}))
	s.deliver()

	s.Equal([]string{pipeline.WriterPrincipal.ID}, seen)
}

type accessFunc func(ctx context.Context, check access.Check) error

func (f accessFunc) Ensure(ctx context.Context, check access.Check) error {
	return f(ctx, check)
}

func (s *PipelineSuite) TestStoreFailureSkipsMappingTouch() {
	ctrl := gomock.NewController(s.T())
	failing := auditmocks.NewMockStore(ctrl)
	failing.EXPECT().InsertLogs(gomock.Any(), gomock.Len(1)).Return(errors.New("disk full"))

	consumer, err := pipeline.NewConsumer(s.mappings, failing, s.gate, pipeline.WithConsumerLogger(discard()))
	s.Require().NoError(err)
	s.seedMapping("Acme", "u1", "U1")

	err = consumer.Router().HandleBatch(context.Background(), pipeline.KindLogCreate, []pipeline.ChangeEvent{
		{Kind: pipeline.KindLogCreate, ProviderName: "Acme", PrincipalID: "u1", LogID: "a", Message: "m"},
	})
	s.Require().Error(err)

	m, err := s.mappings.FindByKey(s.ctx, "Acme", "u1")
	s.Require().NoError(err)
	s.Nil(m.LastLogReference)
}

func TestConstructorsRequireDependencies(t *testing.T) {
	_, err := pipeline.NewPublisher(nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil bus")
	}
	_, err = pipeline.NewConsumer(nil, auditstore.NewInMemory(), nil)
	if err == nil {
		t.Fatal("expected error for nil mapping store")
	}
}
