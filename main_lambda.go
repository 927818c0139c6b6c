//go:build lambda

package main

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

//go:embed data/artifacts.json
var embeddedCatalog string

//go:embed props/props_tier3.yaml
var embeddedRules []byte

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// extremaCache persists across warm invocations of the same execution
// environment, so repeated configurations skip the extrema solves.
var extremaCache = NewExtremaCache()

type optimizeRequest struct {
	Tier    int      `json:"tier"`
	Slots   int      `json:"slots"`
	MaxCopy int      `json:"maxCopy"`
	Exclude []string `json:"exclude"`
	Jitter  *float64 `json:"jitter"`
	Alts    *int     `json:"alts"`
}

type optimizeResponse struct {
	Best         Result   `json:"best"`
	Alternatives []Result `json:"alternatives"`
}

func handler(_ context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req optimizeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}

	set := DefaultSettings()
	if req.Tier != 0 {
		set.Tier = req.Tier
	}
	if req.Slots != 0 {
		set.NumSlots = req.Slots
	}
	if req.MaxCopy != 0 {
		set.MaxCopy = req.MaxCopy
	}
	if req.Jitter != nil {
		set.AltJitter = *req.Jitter
	}
	if req.Alts != nil {
		set.AltCount = *req.Alts
	}
	set.Exclude = req.Exclude
	set.Recompute()

	rules, err := ParseRules(embeddedRules)
	if err != nil {
		return errResp(500, "rules: "+err.Error())
	}
	rules.SetSlots(set.NumSlots)
	cat := parseCatalog(embeddedCatalog, set.Tier, set.Exclude)

	mgr, err := NewBuildManager(&set, rules, cat, &MILPSolver{}, extremaCache, nil)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			detail, _ := json.Marshal(map[string]any{"error": "invalid configuration", "issues": verr.Issues})
			return events.LambdaFunctionURLResponse{StatusCode: 422, Headers: jsonHeader, Body: string(detail)}, nil
		}
		return errResp(500, err.Error())
	}

	best, alts, err := mgr.Run()
	if err != nil {
		return errResp(500, err.Error())
	}

	respJSON, _ := json.Marshal(optimizeResponse{Best: best, Alternatives: alts})
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	l, _ := zap.NewProduction()
	logger = l.Sugar()
	lambda.Start(handler)
}
