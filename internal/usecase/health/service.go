package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	vectors   VectorStorePinger
	users     UserStorePinger
	embedding EmbeddingChecker
}

// New creates a Service. users and embedding can be nil.
func New(vectors VectorStorePinger, users UserStorePinger, embedding EmbeddingChecker) *Service {
	return &Service{vectors: vectors, users: users, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["vector_store"] = check(s.vectors.Ping(ctx))

	if s.users != nil {
		checks["user_store"] = check(s.users.Ping(ctx))
	}

	if s.embedding != nil {
		checks["embedding"] = check(s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func check(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
