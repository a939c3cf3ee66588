package rpcServer

import (
	"encoding/json"
	"net/http"

	"github.com/aixblock/rewards-engine/pkg/distributionQueue"
	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *RpcServer) writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Sugar().Errorw("Failed to encode response", zap.Error(err))
	}
}

// writeError maps engine sentinel errors onto HTTP status codes.
func (s *RpcServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rewardsTypes.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rewardsTypes.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, rewardsTypes.ErrAlreadyClaimedThisPeriod):
		status = http.StatusConflict
	case errors.Is(err, rewardsTypes.ErrPeriodNotElapsed),
		errors.Is(err, rewardsTypes.ErrNoContributions),
		errors.Is(err, rewardsTypes.ErrInsufficientReserve),
		errors.Is(err, rewardsTypes.ErrInsufficientBalance):
		status = http.StatusConflict
	case errors.Is(err, rewardsTypes.ErrInvalidInput),
		errors.Is(err, rewardsTypes.ErrInvalidRatio),
		errors.Is(err, rewardsTypes.ErrInvalidThreshold),
		errors.Is(err, rewardsTypes.ErrArithmeticOverflow):
		status = http.StatusBadRequest
	}
	s.writeJson(w, status, &errorResponse{Error: err.Error()})
}

func (s *RpcServer) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeJson(w, http.StatusBadRequest, &errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *RpcServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

type initializeConfigRequest struct {
	Authority        string `json:"authority"`
	MonthlyThreshold uint64 `json:"monthlyThreshold"`
	ReserveRatio     uint64 `json:"reserveRatio"`
	MaxPointsPerType uint64 `json:"maxPointsPerType"`
}

func (s *RpcServer) handleInitializeConfig(w http.ResponseWriter, r *http.Request) {
	var req initializeConfigRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType:     distributionQueue.MutationType_InitializeConfig,
		Authority:        req.Authority,
		MonthlyThreshold: req.MonthlyThreshold,
		ReserveRatio:     req.ReserveRatio,
		MaxPointsPerType: req.MaxPointsPerType,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusCreated, response.Config)
}

func (s *RpcServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	pc, err := s.dataService.GetConfig(r.Context(), chi.URLParam(r, "configId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, pc)
}

type createContributorRequest struct {
	Authority string `json:"authority"`
}

func (s *RpcServer) handleCreateContributor(w http.ResponseWriter, r *http.Request) {
	var req createContributorRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType: distributionQueue.MutationType_CreateContributor,
		Authority:    req.Authority,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusCreated, response.Contributor)
}

func (s *RpcServer) handleGetContributor(w http.ResponseWriter, r *http.Request) {
	contributor, err := s.dataService.GetContributor(r.Context(), chi.URLParam(r, "contributorId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, contributor)
}

func (s *RpcServer) handleListContributors(w http.ResponseWriter, r *http.Request) {
	contributors, err := s.dataService.ListContributors(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, contributors)
}

func (s *RpcServer) handleListContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := s.dataService.ListContributions(r.Context(), chi.URLParam(r, "contributorId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, contributions)
}

type recordContributionRequest struct {
	ContributorId    string `json:"contributorId"`
	ContributionType string `json:"contributionType"`
	ImpactScore      uint8  `json:"impactScore"`
	Metadata         string `json:"metadata"`
}

func (s *RpcServer) handleRecordContribution(w http.ResponseWriter, r *http.Request) {
	var req recordContributionRequest
	if !s.decode(w, r, &req) {
		return
	}

	contributionType, err := rewardsTypes.ParseContributionType(req.ContributionType)
	if err != nil {
		s.writeError(w, err)
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType:     distributionQueue.MutationType_RecordContribution,
		ConfigId:         chi.URLParam(r, "configId"),
		ContributorId:    req.ContributorId,
		ContributionType: contributionType,
		ImpactScore:      req.ImpactScore,
		Metadata:         req.Metadata,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusCreated, response.Contribution)
}

type closePeriodRequest struct {
	Authority string `json:"authority"`
}

func (s *RpcServer) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	var req closePeriodRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType: distributionQueue.MutationType_ClosePeriod,
		ConfigId:     chi.URLParam(r, "configId"),
		Authority:    req.Authority,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, response.Decision)
}

type distributeTokensRequest struct {
	ContributorId string `json:"contributorId"`
}

type distributeTokensResponse struct {
	Amount        uint64 `json:"amount"`
	ContributorId string `json:"contributorId"`
	Period        uint64 `json:"period"`
}

func (s *RpcServer) handleDistributeTokens(w http.ResponseWriter, r *http.Request) {
	var req distributeTokensRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType:  distributionQueue.MutationType_DistributeTokens,
		ConfigId:      chi.URLParam(r, "configId"),
		ContributorId: req.ContributorId,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, &distributeTokensResponse{
		Amount:        response.Payout.Amount,
		ContributorId: response.Payout.Contributor.Id,
		Period:        response.Payout.Period.Period,
	})
}

func (s *RpcServer) handleResetMonthly(w http.ResponseWriter, r *http.Request) {
	var req closePeriodRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType:  distributionQueue.MutationType_ResetMonthly,
		ConfigId:      chi.URLParam(r, "configId"),
		ContributorId: chi.URLParam(r, "contributorId"),
		Authority:     req.Authority,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, response.Contributor)
}

func (s *RpcServer) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.dataService.ListDistributionPeriods(r.Context(), chi.URLParam(r, "configId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, periods)
}

func (s *RpcServer) handleGetShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.dataService.GetContributorShares(r.Context(), chi.URLParam(r, "configId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, shares)
}

func (s *RpcServer) handleGetReserveStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.dataService.GetReserveStatus(r.Context(), chi.URLParam(r, "configId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, status)
}

type amountRequest struct {
	Authority string `json:"authority"`
	Amount    uint64 `json:"amount"`
}

type poolBalanceResponse struct {
	Balance uint64 `json:"balance"`
}

func (s *RpcServer) handleFundPool(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType: distributionQueue.MutationType_FundPool,
		ConfigId:     chi.URLParam(r, "configId"),
		Amount:       req.Amount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, &poolBalanceResponse{Balance: response.PoolBalance})
}

func (s *RpcServer) handleDepositToReserve(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType: distributionQueue.MutationType_DepositToReserve,
		ConfigId:     chi.URLParam(r, "configId"),
		Authority:    req.Authority,
		Amount:       req.Amount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, response.Reserve)
}

func (s *RpcServer) handleTransferFromReserve(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType: distributionQueue.MutationType_TransferFromReserve,
		ConfigId:     chi.URLParam(r, "configId"),
		Authority:    req.Authority,
		Amount:       req.Amount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, response.Reserve)
}

type updateReserveConfigRequest struct {
	Authority        string  `json:"authority"`
	ReserveRatio     *uint64 `json:"reserveRatio"`
	MonthlyThreshold *uint64 `json:"monthlyThreshold"`
}

func (s *RpcServer) handleUpdateReserveConfig(w http.ResponseWriter, r *http.Request) {
	var req updateReserveConfigRequest
	if !s.decode(w, r, &req) {
		return
	}

	response, err := s.queue.EnqueueAndWait(r.Context(), distributionQueue.MutationData{
		MutationType: distributionQueue.MutationType_UpdateReserveConfig,
		ConfigId:     chi.URLParam(r, "configId"),
		Authority:    req.Authority,
		NewRatio:     req.ReserveRatio,
		NewThreshold: req.MonthlyThreshold,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, response.Config)
}
