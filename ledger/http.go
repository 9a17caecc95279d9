// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"sync"

	"github.com/bitmark-inc/logger"
)

var (
	log     *logger.L
	logOnce sync.Once
)

func getLog() *logger.L {
	logOnce.Do(func() {
		defer func() { recover() }()
		log = logger.New("ledger")
	})
	return log
}

// logErrorf logs via the bitmark-inc logger when it has been initialised,
// falling back to stderr (mirroring fault.internalCriticalf) otherwise.
func logErrorf(format string, arguments ...interface{}) {
	if l := getLog(); nil != l {
		l.Errorf(format, arguments...)
	} else {
		fmt.Printf("*** "+format+"\n", arguments...)
	}
}

// getJSON fetches url with the given bearer token and decodes the JSON
// reply, following util.FetchJSON's request/decode shape but adding
// the token header the algod/indexer REST API requires.
func (c *Client) getJSON(url string, token string, reply interface{}) error {
	request, err := http.NewRequest("GET", url, nil)
	if nil != err {
		return err
	}
	setAuthHeader(request, token)

	return c.doJSON(request, reply)
}

// postJSON submits body as raw bytes and decodes the JSON reply.
func (c *Client) postJSON(url string, token string, body []byte, reply interface{}) error {
	request, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if nil != err {
		return err
	}
	request.Header.Set("Content-Type", "application/x-binary")
	setAuthHeader(request, token)

	return c.doJSON(request, reply)
}

func setAuthHeader(request *http.Request, token string) {
	if "" != token {
		request.Header.Set("X-Algo-API-Token", token)
	}
}

func (c *Client) doJSON(request *http.Request, reply interface{}) error {
	response, err := c.httpClient.Do(request)
	if nil != err {
		return err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if nil != err {
		return err
	}

	if http.StatusOK != response.StatusCode {
		logErrorf("ledger: %s %s -> %d: %s", request.Method, request.URL, response.StatusCode, body)
		return fmt.Errorf("ledger: status %d %q on %q: %s", response.StatusCode, response.Status, request.URL, body)
	}

	if nil == reply {
		return nil
	}
	return json.Unmarshal(body, reply)
}
