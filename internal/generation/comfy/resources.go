package comfy

import (
	"regexp"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	"generation-workers/internal/generation/air"
)

const stackPrefix = "resource-stack"

// Resource is one entry of the chain to splice into a workflow.
type Resource struct {
	AIR         string
	Type        string // air resource type: checkpoint, lora, embedding, ...
	TriggerWord string
	Strength    *float64
}

func (r Resource) strength() float64 {
	if r.Strength == nil {
		return 1
	}
	return *r.Strength
}

type backEdge struct {
	node  string
	input string
}

// ApplyResources rewrites wf in place. Checkpoint and lora resources replace
// every checkpoint loader with a synthesized chain: one checkpoint head
// followed by a LoraLoader per lora, in order. Consumers of the original
// loaders, including those reached through existing LoraLoader chains, are
// re-pointed at the chain: vae inputs bind to the head, everything else to
// the tail. Embeddings are substituted into string inputs and upscalers set
// the model of every upscale loader. It returns the number of nodes added.
//
// Templates without a checkpoint loader do not take checkpoint or lora
// resources; those are skipped.
func ApplyResources(wf Workflow, resources []Resource) int {
	children := map[string][]backEdge{}
	var checkpointLoaders, upscaleLoaders []string

	for _, id := range wf.IDs() {
		node := wf[id]
		switch node.ClassType {
		case ClassCheckpointLoader:
			checkpointLoaders = append(checkpointLoaders, id)
		case ClassUpscaleModelLoader:
			upscaleLoaders = append(upscaleLoaders, id)
		}
		for _, input := range sortedKeys(node.Inputs) {
			if ref, _, ok := AsEdge(node.Inputs[input]); ok {
				children[ref] = append(children[ref], backEdge{node: id, input: input})
			}
		}
	}
	needsResources := len(checkpointLoaders) > 0

	var checkpoint *Resource
	var loras []Resource
	for i := range resources {
		r := resources[i]
		switch r.Type {
		case air.TypeCheckpoint:
			if checkpoint == nil {
				checkpoint = &r
			}
		case air.TypeLora, air.TypeDora, air.TypeLycoris:
			loras = append(loras, r)
		case air.TypeEmbedding:
			substituteEmbedding(wf, r)
		case air.TypeUpscaler:
			for _, id := range upscaleLoaders {
				wf[id].Inputs["model_name"] = r.AIR
			}
		}
	}

	if !needsResources || (checkpoint == nil && len(loras) == 0) {
		return 0
	}

	stack := make([]string, 0, len(loras)+1)
	head := nextID(wf, len(stack))
	if checkpoint != nil {
		wf[head] = &Node{
			ClassType: ClassCheckpointLoader,
			Inputs:    map[string]interface{}{"ckpt_name": checkpoint.AIR},
		}
	} else {
		// Keep the template's own checkpoint under the new chain.
		wf[head] = &Node{
			ClassType: ClassCheckpointLoader,
			Inputs:    cloneInputs(wf[checkpointLoaders[0]].Inputs),
		}
	}
	stack = append(stack, head)

	for _, lora := range loras {
		tail := stack[len(stack)-1]
		id := nextID(wf, len(stack))
		wf[id] = &Node{
			ClassType: ClassLoraLoader,
			Inputs: map[string]interface{}{
				"lora_name":      lora.AIR,
				"strength_model": lora.strength(),
				"strength_clip":  lora.strength(),
				"model":          Edge(tail, 0),
				"clip":           Edge(tail, 1),
			},
		}
		stack = append(stack, id)
	}

	tail := stack[len(stack)-1]
	removed := map[string]bool{}
	for _, loaderID := range checkpointLoaders {
		removed[loaderID] = true

		queue := append([]backEdge(nil), children[loaderID]...)
		visited := map[backEdge]bool{}
		for len(queue) > 0 {
			e := queue[0]
			queue = queue[1:]
			if visited[e] {
				continue
			}
			visited[e] = true

			child, ok := wf[e.node]
			if !ok {
				continue
			}
			if child.ClassType == ClassLoraLoader {
				removed[e.node] = true
				queue = append(queue, children[e.node]...)
				continue
			}

			_, slot, _ := AsEdge(child.Inputs[e.input])
			target := tail
			if e.input == "vae" {
				target = head
			}
			child.Inputs[e.input] = Edge(target, slot)
		}
	}

	for id := range removed {
		delete(wf, id)
	}
	return len(stack)
}

// nextID returns resource-stack, resource-stack-1, ... skipping ids already
// present in wf.
func nextID(wf Workflow, n int) string {
	for {
		id := stackPrefix
		if n > 0 {
			id = stackPrefix + "-" + strconv.Itoa(n)
		}
		if _, taken := wf[id]; !taken {
			return id
		}
		n++
	}
}

func substituteEmbedding(wf Workflow, r Resource) {
	if r.TriggerWord == "" {
		return
	}
	re := wordPattern(r.TriggerWord)
	replacement := "embedding:" + r.AIR
	for _, node := range wf {
		for key, v := range node.Inputs {
			if s, ok := v.(string); ok && re.MatchString(s) {
				node.Inputs[key] = re.ReplaceAllLiteralString(s, replacement)
			}
		}
	}
}

// wordPattern matches word case-insensitively on word boundaries. Boundaries
// are only asserted next to word characters.
func wordPattern(word string) *regexp.Regexp {
	pattern := regexp.QuoteMeta(word)
	first, _ := utf8.DecodeRuneInString(word)
	last, _ := utf8.DecodeLastRuneInString(word)
	if isWordRune(first) {
		pattern = `\b` + pattern
	}
	if isWordRune(last) {
		pattern += `\b`
	}
	return regexp.MustCompile(`(?i)` + pattern)
}

func isWordRune(r rune) bool {
	return r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
