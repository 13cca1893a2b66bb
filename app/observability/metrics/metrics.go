package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SignupsTotal           metric.Int64Counter
	LoginAttemptsTotal     metric.Int64Counter
	LoginFailuresTotal     metric.Int64Counter
	VerificationsTotal     metric.Int64Counter
	SessionsCreatedTotal   metric.Int64Counter
	SessionsRevokedTotal   metric.Int64Counter
	TokenRefreshesTotal    metric.Int64Counter
	OAuthLoginsTotal       metric.Int64Counter
	PasswordResetsTotal    metric.Int64Counter
	AuthDurationSeconds    metric.Float64Histogram
	DbQueryDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-saas-starter")
		m := &AppMetrics{}

		counters := []struct {
			inst *metric.Int64Counter
			name string
			desc string
		}{
			{&m.SignupsTotal, "signups_total", "Total number of account creations"},
			{&m.LoginAttemptsTotal, "login_attempts_total", "Total number of login attempts"},
			{&m.LoginFailuresTotal, "login_failures_total", "Total number of failed logins"},
			{&m.VerificationsTotal, "email_verifications_total", "Total number of successful email verifications"},
			{&m.SessionsCreatedTotal, "sessions_created_total", "Total number of sessions created"},
			{&m.SessionsRevokedTotal, "sessions_revoked_total", "Total number of sessions revoked"},
			{&m.TokenRefreshesTotal, "token_refreshes_total", "Total number of token refreshes"},
			{&m.OAuthLoginsTotal, "oauth_logins_total", "Total number of OAuth logins"},
			{&m.PasswordResetsTotal, "password_resets_total", "Total number of completed password resets"},
		}
		for _, c := range counters {
			inst, err := meter.Int64Counter(c.name,
				metric.WithDescription(c.desc),
				metric.WithUnit("{event}"),
			)
			if err != nil {
				log.Fatalf("Metrics: Failed to create %s: %v", c.name, err)
			}
			*c.inst = inst
		}

		var err error
		m.AuthDurationSeconds, err = meter.Float64Histogram(
			"auth_request_duration_seconds",
			metric.WithDescription("Duration of auth operations in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_request_duration_seconds: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance. InitAppMetrics must run first.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
