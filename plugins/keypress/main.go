// Package main provides a keypress plugin for Linux.
// It injects key presses into the focused window via xdotool, which is how
// recognized game actions reach the running game.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action     string          `json:"action"`
	Gesture    string          `json:"gesture"`
	Confidence float64         `json:"confidence"`
	Params     json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeyParams defines parameters for press and hold actions. Key names are
// xdotool keysyms: space, Up, Down, Left, Right, a-z.
type KeyParams struct {
	Key        string `json:"key"`
	Repeat     int    `json:"repeat"`
	DurationMs int    `json:"duration_ms"`
}

func main() {
	// Read request from stdin
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "press":
		if err := handlePress(req.Params); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	case "hold":
		if err := handleHold(req.Params); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	// Write success response
	writeSuccessResponse()
}

// handlePress taps a key once, or repeat times when requested.
func handlePress(params json.RawMessage) error {
	p, err := parseKeyParams(params)
	if err != nil {
		return err
	}

	args := []string{"key", "--clearmodifiers"}
	if p.Repeat > 1 {
		args = append(args, "--repeat", strconv.Itoa(p.Repeat))
	}
	args = append(args, p.Key)

	return runXdotool(args...)
}

// handleHold presses a key down, waits for the configured duration and
// releases it. Used for actions the game treats as sustained input.
func handleHold(params json.RawMessage) error {
	p, err := parseKeyParams(params)
	if err != nil {
		return err
	}

	duration := time.Duration(p.DurationMs) * time.Millisecond
	if duration <= 0 {
		duration = 200 * time.Millisecond
	}

	if err := runXdotool("keydown", "--clearmodifiers", p.Key); err != nil {
		return err
	}
	time.Sleep(duration)

	return runXdotool("keyup", p.Key)
}

// parseKeyParams decodes and validates the action parameters.
func parseKeyParams(params json.RawMessage) (*KeyParams, error) {
	var p KeyParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
	}

	if p.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	return &p, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runXdotool executes an xdotool command and returns any error.
func runXdotool(args ...string) error {
	cmd := exec.Command("xdotool", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
