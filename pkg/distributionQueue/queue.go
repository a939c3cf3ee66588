package distributionQueue

import (
	"context"
	"fmt"

	"github.com/aixblock/rewards-engine/pkg/coordinator"
	"go.uber.org/zap"
)

func NewDistributionQueue(c *coordinator.Coordinator, logger *zap.Logger) *DistributionQueue {
	queue := &DistributionQueue{
		logger:      logger,
		coordinator: c,
		// allow the queue to buffer up to 100 messages
		queue: make(chan *MutationMessage, 100),
		done:  make(chan struct{}),
	}
	return queue
}

// Enqueue adds a new message to the queue and returns immediately without
// waiting for the mutation to complete.
func (dq *DistributionQueue) Enqueue(payload *MutationMessage) {
	dq.logger.Sugar().Debugw("Enqueueing mutation message", "type", payload.Data.MutationType)
	dq.queue <- payload
}

// EnqueueAndWait adds a new message to the queue and blocks until the
// mutation completes or the context is canceled.
func (dq *DistributionQueue) EnqueueAndWait(ctx context.Context, data MutationData) (*MutationResponseData, error) {
	responseChan := make(chan *MutationResponse, 1)

	payload := &MutationMessage{
		Data:         data,
		ResponseChan: responseChan,
	}
	dq.Enqueue(payload)

	select {
	case response := <-responseChan:
		return response.Data, response.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Process consumes the queue until Close is called. Run it on its own
// goroutine; it is the single writer for all engine state.
func (dq *DistributionQueue) Process() {
	for {
		select {
		case <-dq.done:
			dq.logger.Sugar().Infow("Stopping distribution queue")
			return
		case message := <-dq.queue:
			response := dq.handle(message.Data)
			if message.ResponseChan != nil {
				message.ResponseChan <- response
			}
		}
	}
}

// Close signals the queue to stop processing messages.
func (dq *DistributionQueue) Close() {
	dq.logger.Sugar().Infow("Closing distribution queue")
	close(dq.done)
}

func (dq *DistributionQueue) handle(data MutationData) *MutationResponse {
	response := &MutationResponse{Data: &MutationResponseData{}}
	c := dq.coordinator

	switch data.MutationType {
	case MutationType_InitializeConfig:
		response.Data.Config, response.Error = c.InitializeConfig(data.Authority, data.MonthlyThreshold, data.ReserveRatio, data.MaxPointsPerType)
	case MutationType_CreateContributor:
		response.Data.Contributor, response.Error = c.CreateContributor(data.Authority)
	case MutationType_RecordContribution:
		response.Data.Contribution, response.Error = c.RecordContribution(data.ConfigId, data.ContributorId, data.ContributionType, data.ImpactScore, data.Metadata)
	case MutationType_ClosePeriod:
		response.Data.Decision, response.Error = c.ClosePeriod(data.ConfigId, data.Authority)
	case MutationType_ResetMonthly:
		response.Data.Contributor, response.Error = c.ResetContributorMonthly(data.ConfigId, data.ContributorId, data.Authority)
	case MutationType_DistributeTokens:
		response.Data.Payout, response.Error = c.DistributeTokens(data.ConfigId, data.ContributorId)
	case MutationType_FundPool:
		response.Data.PoolBalance, response.Error = c.FundPool(data.ConfigId, data.Amount)
	case MutationType_DepositToReserve:
		response.Data.Reserve, response.Error = c.DepositToReserve(data.ConfigId, data.Authority, data.Amount)
	case MutationType_TransferFromReserve:
		response.Data.Reserve, response.Error = c.TransferFromReserve(data.ConfigId, data.Authority, data.Amount)
	case MutationType_UpdateReserveConfig:
		response.Data.Config, response.Error = c.UpdateReserveConfig(data.ConfigId, data.Authority, data.NewRatio, data.NewThreshold)
	default:
		response.Error = fmt.Errorf("unknown mutation type '%s'", data.MutationType)
	}

	if response.Error != nil {
		dq.logger.Sugar().Debugw("Mutation failed",
			zap.String("type", string(data.MutationType)),
			zap.Error(response.Error),
		)
	}
	return response
}
