package app

import (
	"fmt"
	"reflect"

	"github.com/go-drift/pagelayout/pkg/core"
)

// maxTreeDepth limits DescribeTree recursion.
const maxTreeDepth = 256

// TreeNode describes one element of a mounted tree.
type TreeNode struct {
	WidgetType  string     `json:"widgetType"`
	ElementType string     `json:"elementType"`
	Key         any        `json:"key,omitempty"`
	Depth       int        `json:"depth"`
	NeedsBuild  bool       `json:"needsBuild"`
	HasState    bool       `json:"hasState,omitempty"`
	Children    []TreeNode `json:"children,omitempty"`
}

// Tree describes the session's element tree, or returns nil before Mount.
func (s *Session) Tree() *TreeNode {
	if s.root == nil {
		return nil
	}
	node := DescribeTree(s.root)
	return &node
}

// DescribeTree converts an element tree to a JSON-serializable form.
func DescribeTree(elem core.Element) TreeNode {
	return describe(elem, 0)
}

func describe(elem core.Element, depth int) TreeNode {
	if elem == nil {
		return TreeNode{ElementType: "<nil>"}
	}

	node := TreeNode{
		ElementType: reflect.TypeOf(elem).String(),
		Depth:       elem.Depth(),
	}
	if nb, ok := elem.(interface{ NeedsBuild() bool }); ok {
		node.NeedsBuild = nb.NeedsBuild()
	}
	if widget := elem.Widget(); widget != nil {
		node.WidgetType = reflect.TypeOf(widget).String()
		node.Key = safeKey(widget.Key())
	}
	if _, ok := elem.(*core.StatefulElement); ok {
		node.HasState = true
	}

	if depth < maxTreeDepth {
		elem.VisitChildren(func(child core.Element) bool {
			node.Children = append(node.Children, describe(child, depth+1))
			return true
		})
	}
	return node
}

// safeKey converts a widget key to a JSON-safe value.
func safeKey(key any) any {
	if key == nil {
		return nil
	}
	switch key.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		return key
	default:
		return fmt.Sprintf("%v", key)
	}
}
