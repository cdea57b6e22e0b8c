// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// statusHTTPClient is replaceable in tests.
var statusHTTPClient = &http.Client{Timeout: 5 * time.Second}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether a running ShopSage server is healthy",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	listen := viper.GetString("networking.listen")

	resp, err := statusHTTPClient.Get("http://" + listen + "/health")
	if err != nil {
		return ssgerr.Wrapf(err, ssgerr.CodeCLIRequestFailure, "shopsage is not reachable at %s", listen)
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeCLIRequestFailure, "decoding health response")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "shopsage at %s: %s\n", listen, body.Status)
	return nil
}
