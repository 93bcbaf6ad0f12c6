// Command seed drives a locally running triage engine with sample
// submissions: a handful of single analyses followed by one batch job that it
// polls to completion. Useful for eyeballing responses during development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

var samples = []string{
	"URGENT: There's a gas leak on Oak Street, please send help immediately!",
	"Thank you for fixing the streetlights so quickly, excellent work!",
	"The pothole on Main Road has been ignored for three weeks now.",
	"Garbage collection was missed again in sector 12.",
	"The new city website is really easy to use.",
}

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "base-url", "http://localhost:8080", "Triage engine base URL")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	for _, text := range samples {
		body, _ := json.Marshal(map[string]any{"text": text})
		resp, err := client.Post(baseURL+"/api/v1/analyze", "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("analyze request: %v", err)
		}
		var result map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			log.Fatalf("decode analyze response: %v", err)
		}
		resp.Body.Close()
		fmt.Printf("%-60.60q -> sentiment=%v category=%v priority=%v urgency=%v\n",
			text, result["sentiment"], result["category"], result["priority"], result["urgency_score"])
	}

	body, _ := json.Marshal(map[string]any{"messages": samples, "owner_id": "localdev"})
	resp, err := client.Post(baseURL+"/api/v1/batch/process", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("batch submit: %v", err)
	}
	var job struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		log.Fatalf("decode batch response: %v", err)
	}
	resp.Body.Close()
	fmt.Printf("submitted batch %s\n", job.JobID)

	for {
		time.Sleep(500 * time.Millisecond)
		resp, err := client.Get(baseURL + "/api/v1/batch/jobs/" + job.JobID)
		if err != nil {
			log.Fatalf("batch status: %v", err)
		}
		var status struct {
			Status             string  `json:"status"`
			ProgressPercentage float64 `json:"progress_percentage"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			log.Fatalf("decode status response: %v", err)
		}
		resp.Body.Close()
		fmt.Printf("job %s: %s (%.0f%%)\n", job.JobID, status.Status, status.ProgressPercentage)
		if status.Status == "completed" || status.Status == "failed" {
			break
		}
	}

	resp, err = client.Get(baseURL + "/api/v1/batch/jobs/" + job.JobID + "/summary")
	if err != nil {
		log.Fatalf("batch summary: %v", err)
	}
	defer resp.Body.Close()
	var summary json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		log.Fatalf("decode summary response: %v", err)
	}
	fmt.Printf("summary: %s\n", summary)
}
