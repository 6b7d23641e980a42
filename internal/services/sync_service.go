package services

import (
	"context"
	"encoding/json"
	"strconv"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/repositories"
	"greenbus/backend/internal/utils"
)

// SyncService drains the queue a capture device built while offline. Events
// are applied strictly in the order sent, one at a time; a failing event is
// reported in its result slot and never aborts the rest of the batch.
type SyncService struct {
	Taps      TapService
	Tickets   TicketService
	MaxBatch  int
	RequestID string
}

type SyncEvent struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data" binding:"required"`
}

type SyncRequest struct {
	Events     []SyncEvent `json:"events" binding:"required"`
	OperatorID int64       `json:"-"`
}

const (
	SyncStatusSuccess   = "success"
	SyncStatusDuplicate = "duplicate"
	SyncStatusError     = "error"
)

type SyncEventResult struct {
	Index     int    `json:"index"`
	Type      string `json:"type"`
	OfflineID string `json:"offline_id"`
	Status    string `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Result    any    `json:"result,omitempty"`
}

type SyncSummary struct {
	Processed int `json:"processed"`
	Success   int `json:"success"`
	Duplicate int `json:"duplicate"`
	Errors    int `json:"error"`
}

type SyncResult struct {
	Summary SyncSummary       `json:"summary"`
	Results []SyncEventResult `json:"results"`
}

func (s SyncService) Process(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	if len(req.Events) == 0 {
		return nil, domain.ValidationError{Field: "events", Msg: "must not be empty"}
	}
	if len(req.Events) > s.MaxBatch {
		return nil, domain.ValidationError{
			Field: "events",
			Msg:   "batch exceeds " + strconv.Itoa(s.MaxBatch) + " events",
			Code:  domain.CodeBatchTooLarge,
		}
	}
	utils.LogEvent(s.RequestID, "sync", "batch_start", "events="+strconv.Itoa(len(req.Events)))

	out := &SyncResult{
		Summary: SyncSummary{Processed: len(req.Events)},
		Results: make([]SyncEventResult, 0, len(req.Events)),
	}
	for i, ev := range req.Events {
		res := s.applyEvent(ctx, i, ev, req.OperatorID)
		switch res.Status {
		case SyncStatusSuccess:
			out.Summary.Success++
		case SyncStatusDuplicate:
			out.Summary.Duplicate++
		default:
			out.Summary.Errors++
		}
		out.Results = append(out.Results, res)
	}
	utils.LogEvent(s.RequestID, "sync", "batch_done",
		"success="+strconv.Itoa(out.Summary.Success)+
			" duplicate="+strconv.Itoa(out.Summary.Duplicate)+
			" error="+strconv.Itoa(out.Summary.Errors))
	return out, nil
}

func (s SyncService) applyEvent(ctx context.Context, index int, ev SyncEvent, operatorID int64) SyncEventResult {
	res := SyncEventResult{Index: index, Type: ev.Type, OfflineID: eventOfflineID(ev.Data)}

	switch ev.Type {
	case repositories.EventTapIn:
		var req TapInRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			return failed(res, domain.ValidationError{Field: "data", Msg: "malformed tap_in payload", Err: err})
		}
		req.OperatorID = operatorID
		r, err := s.Taps.TapIn(ctx, req)
		if err != nil {
			return failed(res, err)
		}
		return succeeded(res, r, r.Duplicate)

	case repositories.EventTapOut:
		var req TapOutRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			return failed(res, domain.ValidationError{Field: "data", Msg: "malformed tap_out payload", Err: err})
		}
		req.OperatorID = operatorID
		r, err := s.Taps.TapOut(ctx, req)
		if err != nil {
			return failed(res, err)
		}
		return succeeded(res, r, r.Duplicate)

	case repositories.EventManualTicket:
		var req ManualTicketRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			return failed(res, domain.ValidationError{Field: "data", Msg: "malformed manual_ticket payload", Err: err})
		}
		req.OperatorID = operatorID
		r, err := s.Tickets.Issue(ctx, req)
		if err != nil {
			return failed(res, err)
		}
		return succeeded(res, r, r.Duplicate)

	default:
		return failed(res, domain.ValidationError{Field: "type", Msg: "unknown event type " + strconv.Quote(ev.Type)})
	}
}

// eventOfflineID pulls the dedup key out of a raw payload so devices can
// correlate result slots by id rather than by position.
func eventOfflineID(data json.RawMessage) string {
	var payload struct {
		OfflineID string `json:"offline_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.OfflineID
}

func succeeded(res SyncEventResult, result any, duplicate bool) SyncEventResult {
	res.Status = SyncStatusSuccess
	if duplicate {
		res.Status = SyncStatusDuplicate
	}
	res.Result = result
	return res
}

func failed(res SyncEventResult, err error) SyncEventResult {
	res.Status = SyncStatusError
	res.Code = domain.ErrorCode(err)
	res.Message = err.Error()
	return res
}
