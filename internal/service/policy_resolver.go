package service

import (
	"context"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// PolicyResolver maps a ticket's priority and problem category to SLA limits.
// Policies are loaded from the configuration source on every evaluation so
// limit changes apply to the next recomputation, never retroactively.
type PolicyResolver struct {
	policies repository.PolicyRepository
	timeout  time.Duration
}

// NewPolicyResolver constructs the resolver.
func NewPolicyResolver(policies repository.PolicyRepository, timeout time.Duration) *PolicyResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PolicyResolver{policies: policies, timeout: timeout}
}

// Resolve looks up the policy for (priority, category), falling back to the
// priority-only tier, falling back to a policy with no limits. A missing
// policy is not an error: callers classify it as sem_sla.
func (r *PolicyResolver) Resolve(ctx context.Context, prioridade domain.TicketPriority, categoria string) (domain.SLAPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	policies, err := r.policies.ListActive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SLAPolicy{}, apperrors.NewTransient("policy source timed out", err)
		}
		return domain.SLAPolicy{}, err
	}

	var priorityTier *domain.SLAPolicy
	for i := range policies {
		p := policies[i]
		if p.Prioridade != prioridade {
			continue
		}
		if p.Categoria != nil {
			if categoria != "" && *p.Categoria == categoria {
				return p, nil
			}
			continue
		}
		if priorityTier == nil {
			priorityTier = &policies[i]
		}
	}
	if priorityTier != nil {
		return *priorityTier, nil
	}

	// no tier matched: ticket has no SLA
	return domain.SLAPolicy{Prioridade: prioridade}, nil
}

// ListPolicies exposes the active policy table for the admin panel.
func (r *PolicyResolver) ListPolicies(ctx context.Context) ([]domain.SLAPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	policies, err := r.policies.ListActive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTransient("policy source timed out", err)
		}
		return nil, err
	}
	return policies, nil
}
