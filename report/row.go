package report

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/scenario"
)

// TimestampLayout is the layout of Row.Timestamp in text reports.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Row is the flat report of one scenario run.
type Row struct {
	RunID              uuid.UUID   `json:"run_id"`
	Timestamp          time.Time   `json:"timestamp"`
	Scenario           string      `json:"scenario"`
	Method             string      `json:"method"`
	NumAccounts        int         `json:"num_accounts"`
	Users              int         `json:"users"`
	OpsPerUser         int         `json:"ops_per_user"`
	Attempted          int         `json:"attempted"`
	Succeeded          int         `json:"succeeded"`
	Failed             int         `json:"failed"`
	FailedInsufficient int         `json:"failed_insufficient"`
	FailedInvalid      int         `json:"failed_invalid"`
	FailedSameAccount  int         `json:"failed_same_account"`
	FailedOther        int         `json:"failed_other"`
	OpsPerSec          float64     `json:"ops_per_sec"`
	AvgLatencyMs       float64     `json:"avg_latency_ms"`
	P95LatencyMs       float64     `json:"p95_latency_ms"`
	TotalDrift         money.Money `json:"total_drift"`
	Currency           string      `json:"currency"`
	CritDelayMs        float64     `json:"crit_delay_ms"`
	TransferOnly       bool        `json:"transfer_only"`
}

// NewRow builds the row for result, stamped with a fresh run ID.
func NewRow(result scenario.Result, currency string) Row {
	m := result.Metrics

	return Row{
		RunID:              uuid.New(),
		Timestamp:          result.StartedAt.UTC().Truncate(time.Second),
		Scenario:           result.Scenario.Title,
		Method:             result.Method.Title(),
		NumAccounts:        result.Scenario.Accounts,
		Users:              result.Scenario.Users,
		OpsPerUser:         result.Scenario.OpsPerUser,
		Attempted:          m.Attempted,
		Succeeded:          m.Succeeded,
		Failed:             m.Failed.Total,
		FailedInsufficient: m.Failed.ByReason.InsufficientFunds,
		FailedInvalid:      m.Failed.ByReason.InvalidAmount,
		FailedSameAccount:  m.Failed.ByReason.SameAccount,
		FailedOther:        m.Failed.ByReason.Other,
		OpsPerSec:          m.OpsPerSec,
		AvgLatencyMs:       m.AvgLatencyMs,
		P95LatencyMs:       m.P95LatencyMs,
		TotalDrift:         m.TotalDrift,
		Currency:           currency,
		CritDelayMs:        math.Round(float64(result.AccountConfig.CriticalSectionDelay)/float64(time.Millisecond)*1000) / 1000,
		TransferOnly:       result.Scenario.TransferOnly,
	}
}

// Header returns the column names of a text report, in Record order.
func Header() []string {
	return []string{
		"run_id", "timestamp", "scenario", "method", "num_accounts", "users", "ops_per_user",
		"attempted", "succeeded", "failed", "failed_insufficient", "failed_invalid",
		"failed_same_account", "failed_other",
		"ops_per_sec", "avg_latency_ms", "p95_latency_ms",
		"total_drift", "currency", "crit_delay_ms", "transfer_only",
	}
}

// Record renders r as text fields in Header order.
func (r Row) Record() []string {
	return []string{
		r.RunID.String(),
		r.Timestamp.UTC().Format(TimestampLayout),
		r.Scenario,
		r.Method,
		strconv.Itoa(r.NumAccounts),
		strconv.Itoa(r.Users),
		strconv.Itoa(r.OpsPerUser),
		strconv.Itoa(r.Attempted),
		strconv.Itoa(r.Succeeded),
		strconv.Itoa(r.Failed),
		strconv.Itoa(r.FailedInsufficient),
		strconv.Itoa(r.FailedInvalid),
		strconv.Itoa(r.FailedSameAccount),
		strconv.Itoa(r.FailedOther),
		formatFloat(r.OpsPerSec),
		formatFloat(r.AvgLatencyMs),
		formatFloat(r.P95LatencyMs),
		r.TotalDrift.String(),
		r.Currency,
		formatFloat(r.CritDelayMs),
		strconv.FormatBool(r.TransferOnly),
	}
}

// ByReason returns the failure counters keyed by reason.
func (r Row) ByReason() map[string]int {
	return map[string]int{
		"insufficient_funds": r.FailedInsufficient,
		"invalid_amount":     r.FailedInvalid,
		"same_account":       r.FailedSameAccount,
		"other":              r.FailedOther,
	}
}

// DriftViolation reports whether r is a transfer-only run that did not conserve money.
func (r Row) DriftViolation() bool {
	return r.TransferOnly && !r.TotalDrift.IsZero()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
