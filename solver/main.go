// Command solver drives a running backend through its evaluation endpoint:
// it walks a range of starting totals and faces, collects the perfect-play
// score of each configuration, and prints a summary of who wins where.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

type evalResponse struct {
	StartTotal  int    `json:"start_total"`
	StartFace   int    `json:"start_face"`
	FirstPlayer int    `json:"first_player"`
	Eval        int    `json:"eval"`
	Nodes       uint64 `json:"nodes"`
	ElapsedUs   int64  `json:"elapsed_us"`
}

type solver struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
	retries int
}

func main() {
	baseURL := flag.String("addr", "http://localhost:8080", "backend base URL")
	minTotal := flag.Int("min-total", 11, "first starting total to evaluate")
	maxTotal := flag.Int("max-total", 66, "last starting total to evaluate")
	player := flag.Int("player", -1, "first player (1 or -1)")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	retries := flag.Int("retries", 3, "retries per configuration")
	flag.Parse()

	if *minTotal < 11 || *maxTotal > 66 || *minTotal > *maxTotal {
		fmt.Fprintln(os.Stderr, "totals must satisfy 11 <= min <= max <= 66")
		os.Exit(2)
	}
	if *player != 1 && *player != -1 {
		fmt.Fprintln(os.Stderr, "player must be 1 or -1")
		os.Exit(2)
	}

	s := &solver{
		client:  &http.Client{Timeout: *timeout},
		baseURL: *baseURL,
		logger:  log.New(os.Stdout, "[solver] ", log.LstdFlags),
		retries: *retries,
	}
	if err := s.waitForBackend(); err != nil {
		s.logger.Fatalf("backend not reachable at %s: %v", s.baseURL, err)
	}

	winsP1 := 0
	winsP2 := 0
	draws := 0
	var totalNodes uint64
	started := time.Now()
	for total := *minTotal; total <= *maxTotal; total++ {
		for face := 1; face <= 6; face++ {
			result, err := s.evaluate(total, face, *player)
			if err != nil {
				s.logger.Fatalf("eval total=%d face=%d failed: %v", total, face, err)
			}
			totalNodes += result.Nodes
			// Eval is from the mover's perspective; multiplying by the
			// first player's identity recovers the absolute winner.
			switch absolute := result.Eval * result.FirstPlayer; {
			case absolute > 0:
				winsP1++
			case absolute < 0:
				winsP2++
			default:
				draws++
			}
		}
		s.logger.Printf("total=%d done", total)
	}

	configs := (*maxTotal - *minTotal + 1) * 6
	s.logger.Printf("evaluated %d configurations in %s (%d nodes)", configs, time.Since(started).Round(time.Millisecond), totalNodes)
	s.logger.Printf("P1 wins: %d, P2 wins: %d, neutral: %d", winsP1, winsP2, draws)
}

func (s *solver) waitForBackend() error {
	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		resp, err := s.client.Get(s.baseURL + "/api/ping")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Errorf("ping returned %s", resp.Status)
		} else {
			lastErr = err
		}
		time.Sleep(time.Second)
	}
	return lastErr
}

func (s *solver) evaluate(total, face, player int) (evalResponse, error) {
	query := url.Values{}
	query.Set("total", fmt.Sprint(total))
	query.Set("face", fmt.Sprint(face))
	query.Set("player", fmt.Sprint(player))
	endpoint := s.baseURL + "/api/eval?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		resp, err := s.client.Get(endpoint)
		if err != nil {
			lastErr = err
			time.Sleep(time.Second)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("eval returned %s", resp.Status)
			time.Sleep(time.Second)
			continue
		}
		var result evalResponse
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}
	return evalResponse{}, lastErr
}
