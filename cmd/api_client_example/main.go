package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the forecast viewer")
	flag.Parse()

	fmt.Println("Forecast API Client Example")
	fmt.Println("===========================")

	client := &http.Client{Timeout: 10 * time.Second}

	// The first load runs in the background; poll until it settles
	fmt.Println("Waiting for the forecast to load...")
	var body []byte
	for attempt := 0; attempt < 10; attempt++ {
		status, data, err := get(client, *baseURL+"/api/chart")
		if err != nil {
			fmt.Printf("Error fetching chart config: %v\n", err)
			os.Exit(1)
		}
		if status != http.StatusAccepted {
			if status != http.StatusOK {
				fmt.Printf("Forecast unavailable (%d): %s\n", status, data)
				os.Exit(1)
			}
			body = data
			break
		}
		time.Sleep(time.Second)
	}
	if body == nil {
		fmt.Println("Forecast still loading. Try again later.")
		return
	}

	var chartConfig struct {
		Labels   []string `json:"labels"`
		Datasets []struct {
			Label string     `json:"label"`
			Data  []*float64 `json:"data"`
		} `json:"datasets"`
	}
	if err := json.Unmarshal(body, &chartConfig); err != nil {
		fmt.Printf("Error decoding chart config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%d timestamps\n", len(chartConfig.Labels))
	for _, ds := range chartConfig.Datasets {
		gaps := 0
		for _, v := range ds.Data {
			if v == nil {
				gaps++
			}
		}
		fmt.Printf("  %-10s %d values, %d gaps\n", ds.Label, len(ds.Data), gaps)
	}

	// Load history, pretty printed
	_, history, err := get(client, *baseURL+"/api/loads?limit=5")
	if err != nil {
		fmt.Printf("Error fetching load history: %v\n", err)
		os.Exit(1)
	}
	var historyData map[string]interface{}
	json.Unmarshal(history, &historyData)
	prettyJSON, _ := json.MarshalIndent(historyData, "", "  ")
	fmt.Printf("\nRecent loads:\n%s\n", string(prettyJSON))
}

// get fetches url, asking for zstd and decoding it when the server compresses
func get(client *http.Client, url string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept-Encoding", "zstd")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "zstd" {
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return 0, nil, err
		}
		defer dec.Close()
		r = dec
	}
	data, err := io.ReadAll(r)
	return resp.StatusCode, data, err
}
