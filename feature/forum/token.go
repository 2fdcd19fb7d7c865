package forum

import (
	"context"
	"strings"

	"forum-indexer/feature/forum/chain"
	"forum-indexer/feature/forum/models"
)

// ensureCommunityToken loads a community's reward token record or
// materializes it from ledger truth. Absent truth yields (nil, nil).
func (e *Engine) ensureCommunityToken(ctx context.Context, community models.CommunityID, contractAddress string) (*models.CommunityToken, error) {
	contractAddress = strings.ToLower(contractAddress)
	key := models.TokenKey(community, contractAddress)

	token, err := e.store.Token(ctx, key)
	if err != nil {
		return nil, err
	}
	if token != nil {
		return token, nil
	}

	truth, err := e.chain.GetCommunityToken(ctx, contractAddress, community.ID)
	if err != nil {
		return nil, err
	}
	if truth == nil {
		return nil, nil
	}

	token = &models.CommunityToken{
		ID:              key,
		CommunityID:     community.String(),
		ContractAddress: contractAddress,
		Name:            truth.Name,
		Symbol:          truth.Symbol,
		CreationTime:    truth.CreationTime,
	}
	applyTokenRewards(token, truth)
	if err := e.store.SaveToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func applyTokenRewards(token *models.CommunityToken, truth *chain.CommunityToken) {
	token.MaxRewardPerPeriod = truth.MaxRewardPerPeriod
	token.ActiveUsersInPeriod = truth.ActiveUsersInPeriod
	token.MaxRewardPerUser = truth.MaxRewardPerUser
}

func (e *Engine) HandleCommunityTokenCreated(ctx context.Context, ev CommunityTokenCreated) error {
	community := e.communityID(ev.CommunityID)
	key := models.TokenKey(community, ev.TokenAddress)
	return e.run(ctx, ev.TransactionInfo, "community-token-created", models.EntityToken, key, func(ctx context.Context, st *status) error {
		parent, err := e.ensureCommunity(ctx, st, community)
		if err != nil {
			return err
		}
		if parent == nil {
			st.notFound = true
			return nil
		}

		token, err := e.ensureCommunityToken(ctx, community, ev.TokenAddress)
		if err != nil {
			return err
		}
		if token == nil {
			st.notFound = true
		}
		return nil
	})
}

// HandleCommunityTokenUpdated refreshes the token's reward parameters from
// ledger truth. Identity fields are fixed at creation.
func (e *Engine) HandleCommunityTokenUpdated(ctx context.Context, ev CommunityTokenUpdated) error {
	community := e.communityID(ev.CommunityID)
	key := models.TokenKey(community, ev.TokenAddress)
	return e.run(ctx, ev.TransactionInfo, "community-token-updated", models.EntityToken, key, func(ctx context.Context, st *status) error {
		token, err := e.ensureCommunityToken(ctx, community, ev.TokenAddress)
		if err != nil {
			return err
		}
		if token == nil {
			st.notFound = true
			return nil
		}

		truth, err := e.chain.GetCommunityToken(ctx, strings.ToLower(ev.TokenAddress), community.ID)
		if err != nil {
			return err
		}
		if truth == nil {
			st.notFound = true
			return nil
		}

		applyTokenRewards(token, truth)
		return e.store.SaveToken(ctx, token)
	})
}
