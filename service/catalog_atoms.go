package service

import (
	"encoding/json"
	"fmt"

	"simorder/dao/model"
	"simorder/response"

	"github.com/gin-gonic/gin"
)

// RegisterConfig wires the CRUD surface of every catalog atom under the
// given group (mounted at /config).
func RegisterConfig(g *gin.RouterGroup) {
	registerAtom(g, "projects", atomDef[model.Project]{
		kind: "project", codeColumn: "code",
		codeOf: func(p *model.Project) string { return p.Code },
	})
	registerAtom(g, "sim-types", atomDef[model.SimType]{
		kind: "sim type", codeColumn: "code",
		codeOf:   func(s *model.SimType) string { return s.Code },
		validate: validateSimType,
	})
	registerAtom(g, "param-defs", atomDef[model.ParamDef]{
		kind: "param def", codeColumn: "key",
		codeOf:   func(p *model.ParamDef) string { return p.Key },
		validate: validateParamDef,
	})
	registerAtom(g, "condition-defs", atomDef[model.ConditionDef]{
		kind: "condition def", codeColumn: "code",
		codeOf: func(d *model.ConditionDef) string { return d.Code },
	})
	registerAtom(g, "output-defs", atomDef[model.OutputDef]{
		kind: "output def", codeColumn: "code",
		codeOf: func(d *model.OutputDef) string { return d.Code },
	})
	registerAtom(g, "solvers", atomDef[model.Solver]{
		kind: "solver", codeColumn: "code",
		codeOf:   func(s *model.Solver) string { return s.Code },
		validate: validateSolver,
	})
	registerAtom(g, "fold-types", atomDef[model.FoldType]{
		kind: "fold type", codeColumn: "code",
		codeOf: func(f *model.FoldType) string { return f.Code },
	})
	registerAtom(g, "status-defs", atomDef[model.StatusDef]{
		kind: "status def", codeColumn: "code",
		codeOf:   func(s *model.StatusDef) string { return s.Code },
		validate: validateStatusDef,
	})
	registerAtom(g, "workflows", atomDef[model.Workflow]{
		kind: "workflow", codeColumn: "code",
		codeOf:   func(w *model.Workflow) string { return w.Code },
		validate: validateWorkflow,
	})
	registerAtom(g, "automation-modules", atomDef[model.AutomationModule]{
		kind: "automation module", codeColumn: "code",
		codeOf: func(m *model.AutomationModule) string { return m.Code },
	})
	registerAtom(g, "model-levels", atomDef[model.ModelLevel]{
		kind: "model level", codeColumn: "code",
		codeOf: func(m *model.ModelLevel) string { return m.Code },
	})
	registerAtom(g, "care-devices", atomDef[model.CareDevice]{
		kind: "care device", codeColumn: "code",
		codeOf: func(d *model.CareDevice) string { return d.Code },
	})
	registerAtom(g, "solver-resources", atomDef[model.SolverResource]{
		kind: "solver resource", codeColumn: "code",
		codeOf: func(r *model.SolverResource) string { return r.Code },
	})
	registerAtom(g, "departments", atomDef[model.Department]{
		kind: "department", codeColumn: "code",
		codeOf: func(d *model.Department) string { return d.Code },
	})
	registerAtom(g, "roles", atomDef[model.Role]{
		kind: "role", codeColumn: "code",
		codeOf: func(r *model.Role) string { return r.Code },
	})
	registerAtom(g, "permissions", atomDef[model.Permission]{
		kind: "permission", codeColumn: "code",
		codeOf:   func(p *model.Permission) string { return p.Code },
		validate: validatePermission,
	})
	registerAtom(g, "menus", atomDef[model.Menu]{
		kind:     "menu",
		validate: validateMenu,
	})
	registerUsers(g)
}

func validateSimType(s *model.SimType) error {
	if s.SupportAlgMask < 0 {
		return response.NewValidation("supportAlgMask must be non-negative")
	}
	return nil
}

func validateParamDef(p *model.ParamDef) error {
	switch p.ValType {
	case model.ValTypeNumber, model.ValTypeInt, model.ValTypeString, model.ValTypeEnum:
	default:
		return response.NewValidationf("valType %q is not one of number, int, string, enum", p.ValType)
	}
	if p.ValType == model.ValTypeEnum {
		var opts []any
		if len(p.EnumOptions) == 0 || json.Unmarshal(p.EnumOptions, &opts) != nil || len(opts) == 0 {
			return response.NewValidation("enum param requires non-empty enumOptions")
		}
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return response.NewValidation("min must not exceed max")
	}
	return nil
}

func validateSolver(s *model.Solver) error {
	if s.CPUCoreMin > s.CPUCoreDefault || s.CPUCoreDefault > s.CPUCoreMax {
		return response.NewValidation("cpu core must satisfy min <= default <= max")
	}
	if s.MemoryMin > s.MemoryDefault || s.MemoryDefault > s.MemoryMax {
		return response.NewValidation("memory must satisfy min <= default <= max")
	}
	return nil
}

func validateStatusDef(s *model.StatusDef) error {
	if s.Type != model.StatusKindProcess && s.Type != model.StatusKindFinal {
		return response.NewValidationf("status type %q is not PROCESS or FINAL", s.Type)
	}
	return nil
}

func validatePermission(p *model.Permission) error {
	switch p.Type {
	case model.PermissionTypePage, model.PermissionTypeAction, model.PermissionTypeData:
		return nil
	}
	return response.NewValidationf("permission type %q is not PAGE, ACTION or DATA", p.Type)
}

func validateMenu(m *model.Menu) error {
	if m.MenuType == "" {
		m.MenuType = model.MenuTypeMenu
	}
	if m.MenuType != model.MenuTypeMenu && m.MenuType != model.MenuTypeButton {
		return response.NewValidationf("menuType %q is not MENU or BUTTON", m.MenuType)
	}
	return nil
}

type workflowNode struct {
	ID string `json:"id"`
}

type workflowEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// validateWorkflow checks the type enum and, when nodes/edges are present,
// that every edge references known nodes and the graph is acyclic.
func validateWorkflow(w *model.Workflow) error {
	switch w.Type {
	case model.WorkflowTypeOrder, model.WorkflowTypeSimType, model.WorkflowTypeRound:
	default:
		return response.NewValidationf("workflow type %q is not ORDER, SIM_TYPE or ROUND", w.Type)
	}
	if len(w.Nodes) == 0 && len(w.Edges) == 0 {
		return nil
	}
	var nodes []workflowNode
	if err := json.Unmarshal(w.Nodes, &nodes); err != nil {
		return response.NewValidation("workflow nodes must be a list of {id}")
	}
	var edges []workflowEdge
	if len(w.Edges) > 0 {
		if err := json.Unmarshal(w.Edges, &edges); err != nil {
			return response.NewValidation("workflow edges must be a list of {from, to}")
		}
	}
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return response.NewValidation("workflow node id must not be empty")
		}
		if known[n.ID] {
			return response.NewValidationf("duplicate workflow node %q", n.ID)
		}
		known[n.ID] = true
	}
	indeg := make(map[string]int, len(nodes))
	next := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if !known[e.From] || !known[e.To] {
			return response.NewValidationf("workflow edge %s -> %s references an unknown node", e.From, e.To)
		}
		indeg[e.To]++
		next[e.From] = append(next[e.From], e.To)
	}
	// Kahn's algorithm; leftover nodes mean a cycle.
	var queue []string
	for id := range known {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	seen := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		seen++
		for _, to := range next[id] {
			indeg[to]--
			if indeg[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	if seen != len(known) {
		return response.NewValidation(fmt.Sprintf("workflow %q contains a cycle", w.Code))
	}
	return nil
}
