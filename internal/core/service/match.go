package service

import (
	"context"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

// CreateMatchRequest schedules a match. Date is an ISO 8601 instant.
type CreateMatchRequest struct {
	Format   string `json:"format" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// MatchAPI is the matches resource.
type MatchAPI struct {
	caller Caller
}

// NewMatchAPI creates a MatchAPI.
func NewMatchAPI(caller Caller) *MatchAPI {
	return &MatchAPI{caller: caller}
}

// CreateMatch creates a match and returns the stored record.
func (m *MatchAPI) CreateMatch(ctx context.Context, req CreateMatchRequest) (*domain.Match, error) {
	var out domain.Match
	if err := m.caller.Call(ctx, domain.EndpointCreateMatch, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMatches returns every match visible to the caller.
func (m *MatchAPI) ListMatches(ctx context.Context) ([]domain.Match, error) {
	var out []domain.Match
	if err := m.caller.Call(ctx, domain.EndpointListMatches, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteMatch deletes a match.
func (m *MatchAPI) DeleteMatch(ctx context.Context, id string) (domain.Ack, error) {
	var ack domain.Ack
	if err := m.caller.Call(ctx, domain.EndpointDeleteMatch, []string{id}, nil, &ack); err != nil {
		return domain.Ack{}, err
	}
	return ack, nil
}

// GetMatchScore returns the live score snapshot of a match.
func (m *MatchAPI) GetMatchScore(ctx context.Context, id string) (domain.ScoreSnapshot, error) {
	var out domain.ScoreSnapshot
	if err := m.caller.Call(ctx, domain.EndpointGetMatchScore, []string{id}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Toss performs the toss for a match.
func (m *MatchAPI) Toss(ctx context.Context, id string) (domain.TossResult, error) {
	var out domain.TossResult
	if err := m.caller.Call(ctx, domain.EndpointToss, []string{id}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
