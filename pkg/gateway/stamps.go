package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// plurPerBZZ is the PLUR denomination of one xBZZ token.
var plurPerBZZ = decimal.New(1, 16)

// StampStatus is the state of a postage batch as reported by the gateway.
type StampStatus struct {
	// BatchID is the batch identifier, lowercase hex.
	BatchID string
	// Exists reports whether the batch is known to the node. A found
	// status record implies existence even when the response body omits
	// the field.
	Exists bool
	// Usable reports whether the batch payment has propagated far enough
	// to authorize uploads.
	Usable bool
	// Depth and Amount echo the batch sizing.
	Depth  int
	Amount int64
	// BatchTTL is the remaining batch lifetime in seconds, when reported.
	BatchTTL *int64
}

// stampPurchaseResponse is the wire shape of a successful batch purchase.
type stampPurchaseResponse struct {
	BatchID string `json:"batchID"`
}

// stampStatusResponse is the wire shape of a found batch status. Usable is a
// pointer so a response that omits the field can be told apart from one that
// reports false; Exists may be absent entirely (see StampStatus.Exists).
type stampStatusResponse struct {
	BatchID  string `json:"batchID"`
	Usable   *bool  `json:"usable"`
	Depth    int    `json:"depth"`
	Amount   int64  `json:"amount"`
	BatchTTL *int64 `json:"batchTTL"`
	Exists   *bool  `json:"exists"`
}

// PurchaseStamp buys a new postage batch sized by depth (capacity exponent)
// and amount (PLUR per chunk) and returns its batch id.
//
// The canonical purchase path is /stamps/{amount}/{depth} — amount first.
// Earlier gateway tooling disagreed on the order; this client follows the
// current Bee API.
func (c *Client) PurchaseStamp(ctx context.Context, depth int, amount int64) (string, error) {
	ctx, cancel := opContext(ctx, c.timeouts.StampPurchase)
	defer cancel()

	url := c.url(fmt.Sprintf("/stamps/%d/%d", amount, depth))
	zap.L().Debug("purchasing postage stamp",
		zap.String("url", url),
		zap.Int("depth", depth),
		zap.Int64("amount", amount))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("stamp purchase: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, "stamp purchase")
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("stamp purchase: %w: gateway returned HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	var purchase stampPurchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&purchase); err != nil {
		return "", fmt.Errorf("stamp purchase: %w: %v", ErrMalformedResponse, err)
	}
	if purchase.BatchID == "" {
		return "", fmt.Errorf("stamp purchase: %w: response missing batchID", ErrMalformedResponse)
	}

	zap.L().Debug("postage stamp purchased", zap.String("batchID", purchase.BatchID))
	return purchase.BatchID, nil
}

// GetStampStatus queries the status of a postage batch. The returned found
// flag is false when the gateway reports the batch as unknown (HTTP 404) —
// a normal outcome for a freshly purchased batch that has not propagated
// yet, distinct from a fetch failure.
func (c *Client) GetStampStatus(ctx context.Context, stampID string) (StampStatus, bool, error) {
	ctx, cancel := opContext(ctx, c.timeouts.StampStatus)
	defer cancel()

	stampID = strings.ToLower(stampID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/stamps/"+stampID), nil)
	if err != nil {
		return StampStatus{}, false, fmt.Errorf("stamp status: %w", err)
	}

	resp, err := c.do(req, "stamp status")
	if err != nil {
		return StampStatus{}, false, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return StampStatus{}, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StampStatus{}, false, fmt.Errorf("stamp status: %w: gateway returned HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	var status stampStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return StampStatus{}, false, fmt.Errorf("stamp status: %w: %v", ErrMalformedResponse, err)
	}
	if status.BatchID == "" || status.Usable == nil {
		return StampStatus{}, false, fmt.Errorf("stamp status: %w: response missing batchID or usable", ErrMalformedResponse)
	}

	// A found status record implies the batch exists; an explicit exists
	// field only matters when the node reports it as false.
	exists := true
	if status.Exists != nil {
		exists = *status.Exists
	}

	return StampStatus{
		BatchID:  status.BatchID,
		Exists:   exists,
		Usable:   *status.Usable,
		Depth:    status.Depth,
		Amount:   status.Amount,
		BatchTTL: status.BatchTTL,
	}, true, nil
}

// EstimateBatchCost returns the total price of a batch in xBZZ: amount PLUR
// per chunk across the 2^depth chunks the batch can cover. Informational
// only; the node is the authority on actual pricing.
func EstimateBatchCost(depth int, amount int64) decimal.Decimal {
	chunks := decimal.NewFromBigInt(bigPow2(depth), 0)
	plur := decimal.NewFromInt(amount).Mul(chunks)
	return plur.Div(plurPerBZZ)
}

// bigPow2 computes 2^exp; batch depths can exceed what fits in an int64
// product, so the chunk count is kept in a big.Int.
func bigPow2(exp int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(exp))
}
