package main

import (
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/4laawi/recruit-assistant/internal/adapter/signer"
)

var (
	signMethod   string
	signHost     string
	signPath     string
	signBodyFile string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print the SDK-HMAC-SHA256 headers for a cloud OCR request",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireHuawei(); err != nil {
			return err
		}
		host := signHost
		if host == "" {
			host = cfg.HuaweiEndpoint
		}
		path := signPath
		if path == "" {
			path = fmt.Sprintf("/v2/%s/ocr/general-text", cfg.HuaweiProjectID)
		}
		var body []byte
		if signBodyFile != "" {
			if body, err = os.ReadFile(signBodyFile); err != nil {
				return fmt.Errorf("reading body: %w", err)
			}
		}
		headers := http.Header{}
		headers.Set("Content-Type", "application/json")
		signed := signer.New(cfg.HuaweiAccessKey, cfg.HuaweiSecretKey).Sign(signMethod, host, path, headers, body)

		names := make([]string, 0, len(signed))
		for k := range signed {
			names = append(names, k)
		}
		sort.Strings(names)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s https://%s%s\n", signMethod, host, path)
		for _, k := range names {
			fmt.Fprintf(out, "%s: %s\n", k, signed.Get(k))
		}
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signMethod, "method", http.MethodPost, "HTTP method")
	signCmd.Flags().StringVar(&signHost, "host", "", "host (default HUAWEI_ENDPOINT)")
	signCmd.Flags().StringVar(&signPath, "path", "", "URI path (default the general-text OCR path)")
	signCmd.Flags().StringVar(&signBodyFile, "body", "", "file holding the request body")
}
