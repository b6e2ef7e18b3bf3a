package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/maxvaer/webrecon/internal/scanner"
)

type treeNode struct {
	name     string
	status   int // zero for intermediate segments
	children []*treeNode
}

func (n *treeNode) findOrCreate(name string) *treeNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	child := &treeNode{name: name}
	n.children = append(n.children, child)
	return child
}

// writeTree renders the found paths as a tree, e.g. /admin/login.php and
// /admin/index.php share one "admin" node. Discovery order is kept.
func writeTree(w io.Writer, findings []scanner.PathFinding) {
	if len(findings) == 0 {
		return
	}

	root := &treeNode{name: "/"}
	for _, f := range findings {
		node := root
		for _, part := range strings.Split(strings.Trim(f.Path, "/"), "/") {
			if part == "" {
				continue
			}
			node = node.findOrCreate(part)
		}
		if node != root {
			node.status = f.StatusCode
		}
	}

	fmt.Fprintf(w, "\n  Found paths:\n")
	writeChildren(w, root, "  ")
}

func writeChildren(w io.Writer, node *treeNode, prefix string) {
	for i, child := range node.children {
		last := i == len(node.children)-1
		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}
		label := child.name
		if child.status != 0 {
			label = fmt.Sprintf("%s (%d)", child.name, child.status)
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label)
		writeChildren(w, child, prefix+next)
	}
}
