// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/manager"
)

// api wraps a manager.Manager with the JSON/HTTPS surface a browser-style
// client drives to run a bootstrap-funded upload.
type api struct {
	manager *manager.Manager
	log     *logger.L
}

func newAPI(m *manager.Manager, log *logger.L) *api {
	return &api{manager: m, log: log}
}

func (a *api) router() *httprouter.Router {
	router := httprouter.New()
	router.POST("/v1/prepare", a.prepare)
	router.POST("/v1/run", a.run)
	router.GET("/v1/jobs/:id", a.jobStatus)
	return router
}

type prepareRequest struct {
	UserAddress string              `json:"user_address"`
	Content     []byte              `json:"content"`
	Options     manager.PrepareOptions `json:"options"`
}

// prepare runs PrepareBootstrapTransaction synchronously: it only
// touches the local upload store and the node's suggested params (read
// directly and through a simulated save), so it
// does not need the job table.
func (a *api) prepare(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); nil != err {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	userAddress, err := account.AccountFromBase58(req.UserAddress)
	if nil != err {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.manager.PrepareBootstrapTransaction(r.Context(), userAddress, req.Content, req.Options)
	if nil != err {
		a.log.Errorf("prepare failed: %s", err)
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

type runRequest struct {
	FundingTransactionID string                `json:"funding_transaction_id"`
	BootstrapKey          string                `json:"bootstrap_key"`
	Encryption             manager.RunEncryption `json:"encryption"`
}

type runResponse struct {
	JobID string `json:"job_id"`
}

// run consumes a confirmed funding transaction and actually performs the
// upload, which can take several ledger round trips, so it is queued on
// the job table and the caller polls jobStatus for the outcome.
func (a *api) run(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); nil != err {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	id := a.manager.Jobs.Submit(func() (interface{}, error) {
		return a.manager.RunFromBootstrapTransaction(r.Context(), req.FundingTransactionID, req.BootstrapKey, req.Encryption)
	})
	a.writeJSON(w, http.StatusAccepted, runResponse{JobID: id})
}

type jobResponse struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (a *api) jobStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	job, found := a.manager.Jobs.Get(ps.ByName("id"))
	if !found {
		http.NotFound(w, r)
		return
	}

	resp := jobResponse{ID: job.ID, Status: jobStatusName(job.Status)}
	if manager.JobDone == job.Status {
		resp.Result = job.Result
	}
	if manager.JobError == job.Status {
		resp.Error = job.Err.Error()
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func jobStatusName(status manager.JobStatus) string {
	switch status {
	case manager.JobPending:
		return "pending"
	case manager.JobDone:
		return "done"
	case manager.JobError:
		return "error"
	default:
		return "unknown"
	}
}

func (a *api) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (a *api) writeError(w http.ResponseWriter, status int, err error) {
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
