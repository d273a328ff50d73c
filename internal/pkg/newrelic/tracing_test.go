package newrelic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disabledApp(t *testing.T) *newrelic.Application {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("hamroride-test"),
		newrelic.ConfigLicense("0000000000000000000000000000000000000000"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)
	return app
}

func TestInitNewRelicDisabled(t *testing.T) {
	cfg := &models.Config{}
	assert.Nil(t, InitNewRelic(cfg))

	cfg.NewRelic.Enabled = true
	assert.Nil(t, InitNewRelic(cfg), "missing license key keeps the agent off")
}

func TestHelpersWithoutTransaction(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.Nil(t, StartSegment(nil, "noop"))

	assert.NotPanics(t, func() {
		SetTransactionName(nil, "x")
		AddTransactionAttribute(nil, "k", "v")
		NoticeTransactionError(nil, errors.New("boom"))
	})

	called := false
	err := WithSegment(ctx, "segment", func() error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	v, err := WithSegmentAndReturn(ctx, "segment", func() (int, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, v)

	assert.NoError(t, WithMessageProducerSegment(ctx, "rides.r1", func() error { return nil }))
}

func TestSegmentsWithTransaction(t *testing.T) {
	app := disabledApp(t)
	txn := app.StartTransaction("test")
	defer txn.End()
	ctx := newrelic.NewContext(context.Background(), txn)

	sentinel := errors.New("publish failed")
	err := WithMessageProducerSegment(ctx, "rides.r1", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	err = WithSegment(ctx, "RideUC/Accept", func() error { return nil })
	assert.NoError(t, err)
}

func TestStartConsumerTransaction(t *testing.T) {
	ctx, end := StartConsumerTransaction(context.Background(), nil, "location.driver", "location.driver")
	assert.Nil(t, FromContext(ctx))
	end(nil)

	ctx, end = StartConsumerTransaction(context.Background(), disabledApp(t), "location.driver", "location.driver")
	assert.NotNil(t, FromContext(ctx))
	end(errors.New("bad payload"))
}

func TestTraceHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	sentinel := errors.New("handler failed")
	err := TraceHandler("RideHandler.Get", func(c echo.Context) error { return sentinel })(c)
	assert.ErrorIs(t, err, sentinel)
}

func TestEchoMiddleware(t *testing.T) {
	for _, app := range []*newrelic.Application{nil, disabledApp(t)} {
		e := echo.New()
		e.Use(EchoMiddleware(app))
		e.GET("/ping", func(c echo.Context) error {
			SetTransactionName(FromEchoContext(c), "Ping")
			return c.String(http.StatusOK, "pong")
		})

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	}
}
