package config

import (
	"strings"
	"text/template/parse"
)

// templateVariables returns the variable names a directive template
// references, in order of first appearance. Both the {{.name}} and bare
// {{name}} forms count as a reference. Text that fails to parse as a
// template declares no inputs and is served as literal text.
func templateVariables(text string) []string {
	if !strings.Contains(text, "{{") {
		return nil
	}

	tree := parse.New("directive")
	tree.Mode = parse.SkipFuncCheck
	if _, err := tree.Parse(text, "", "", make(map[string]*parse.Tree)); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	walkTemplate(tree.Root, add)
	return names
}

func walkTemplate(node parse.Node, add func(string)) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walkTemplate(child, add)
		}
	case *parse.ActionNode:
		walkPipe(n.Pipe, add)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, add)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, add)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, add)
	case *parse.TemplateNode:
		walkPipe(n.Pipe, add)
	}
}

func walkBranch(n *parse.BranchNode, add func(string)) {
	walkPipe(n.Pipe, add)
	walkTemplate(n.List, add)
	walkTemplate(n.ElseList, add)
}

func walkPipe(pipe *parse.PipeNode, add func(string)) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 {
					add(a.Ident[0])
				}
			case *parse.IdentifierNode:
				add(a.Ident)
			case *parse.PipeNode:
				walkPipe(a, add)
			}
		}
	}
}
