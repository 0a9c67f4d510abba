// Package comfy models node-graph workflows and rewrites them to splice in
// resource loader nodes.
package comfy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Node classes the rewriter understands.
const (
	ClassCheckpointLoader   = "CheckpointLoaderSimple"
	ClassLoraLoader         = "LoraLoader"
	ClassUpscaleModelLoader = "UpscaleModelLoader"
)

// Node is a single processing node. Inputs hold literals or edges, an edge
// being a two element array [nodeId, outputSlot].
type Node struct {
	ClassType string                 `json:"class_type"`
	Inputs    map[string]interface{} `json:"inputs"`
	Meta      map[string]interface{} `json:"_meta,omitempty"`
}

// Workflow maps node ids to nodes.
type Workflow map[string]*Node

// Parse decodes a compiled workflow. Numbers keep their textual form so
// large seeds survive a round trip.
func Parse(raw []byte) (Workflow, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var wf Workflow
	if err := dec.Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	for id, node := range wf {
		if node == nil {
			return nil, fmt.Errorf("node %s is null", id)
		}
		if node.Inputs == nil {
			node.Inputs = map[string]interface{}{}
		}
	}
	return wf, nil
}

// IDs returns node ids in a stable order.
func (wf Workflow) IDs() []string {
	ids := make([]string, 0, len(wf))
	for id := range wf {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edge builds an input value referencing slot of node id.
func Edge(id string, slot interface{}) []interface{} {
	return []interface{}{id, slot}
}

// AsEdge reports whether v is an edge and returns its target and slot.
func AsEdge(v interface{}) (string, interface{}, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 2 {
		return "", nil, false
	}
	id, ok := arr[0].(string)
	if !ok {
		return "", nil, false
	}
	switch arr[1].(type) {
	case json.Number, float64, int:
		return id, arr[1], true
	}
	return "", nil, false
}

func cloneInputs(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if arr, ok := v.([]interface{}); ok {
			out[k] = append([]interface{}(nil), arr...)
			continue
		}
		out[k] = v
	}
	return out
}
