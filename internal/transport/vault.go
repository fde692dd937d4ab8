package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prajwalbharadwajbm/fundledger/internal/assets"
	reqcontext "github.com/prajwalbharadwajbm/fundledger/internal/context"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

type mintRequest struct {
	Asset  models.Address `json:"asset"`
	To     models.Address `json:"to"`
	Amount models.Amount  `json:"amount"`
}

type approveRequest struct {
	Asset  models.Address `json:"asset"`
	Amount models.Amount  `json:"amount"`
}

type holdingResponse struct {
	Asset     models.Address `json:"asset"`
	Holder    models.Address `json:"holder"`
	Balance   models.Amount  `json:"balance"`
	Allowance models.Amount  `json:"allowance"`
}

// registerVaultRoutes serves development funding of principals. Approvals act
// for the authenticated caller; minting is open.
func registerVaultRoutes(r *mux.Router, v *assets.Vault) {
	r.HandleFunc("/vault/mint", func(w http.ResponseWriter, req *http.Request) {
		var body mintRequest
		if err := decodeBody(req, &body); err != nil {
			encodeError(req.Context(), err, w)
			return
		}
		if body.Asset == "" {
			body.Asset = models.NativeAsset
		}
		if err := v.Mint(body.Asset, body.To, body.Amount); err != nil {
			encodeError(req.Context(), err, w)
			return
		}
		writeJSON(w, http.StatusOK, holding(v, body.Asset, body.To))
	}).Methods(http.MethodPost)

	r.HandleFunc("/vault/approve", func(w http.ResponseWriter, req *http.Request) {
		caller := reqcontext.GetCaller(req.Context())
		if caller == "" {
			encodeError(req.Context(), models.ErrMissingCaller, w)
			return
		}
		var body approveRequest
		if err := decodeBody(req, &body); err != nil {
			encodeError(req.Context(), err, w)
			return
		}
		if err := v.Approve(body.Asset, caller, body.Amount); err != nil {
			encodeError(req.Context(), err, w)
			return
		}
		writeJSON(w, http.StatusOK, holding(v, body.Asset, caller))
	}).Methods(http.MethodPost)

	r.HandleFunc("/vault/balances/{asset}/{holder}", func(w http.ResponseWriter, req *http.Request) {
		asset, err := pathAddress(req, "asset")
		if err != nil {
			encodeError(req.Context(), err, w)
			return
		}
		holder, err := pathAddress(req, "holder")
		if err != nil {
			encodeError(req.Context(), err, w)
			return
		}
		writeJSON(w, http.StatusOK, holding(v, asset, holder))
	}).Methods(http.MethodGet)
}

func holding(v *assets.Vault, asset, holder models.Address) holdingResponse {
	resp := holdingResponse{
		Asset:   asset,
		Holder:  holder,
		Balance: v.BalanceOf(asset, holder),
	}
	if !asset.IsNative() {
		resp.Allowance = v.Allowance(asset, holder)
	}
	return resp
}
