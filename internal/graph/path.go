package graph

// Edge labels used by kinship paths.
const (
	EdgeStart  = "self"
	EdgeParent = "parent"
	EdgeSpouse = "spouse"
	EdgeChild  = "child"
)

// PathStep is one hop of a kinship path: the member reached and the edge
// taken from the previous step.
type PathStep struct {
	ID  string `json:"id"`
	Via string `json:"via"`
}

// KinshipPath finds the shortest chain of parent, spouse and child edges
// between two members. Neighbors are expanded in that order, children in
// store order, so the result is deterministic. It returns nil when either id
// is unknown or no chain exists.
func KinshipPath(t *Tree, fromID, toID string) []PathStep {
	if t.Member(fromID) == nil || t.Member(toID) == nil {
		return nil
	}
	if fromID == toID {
		return []PathStep{{ID: fromID, Via: EdgeStart}}
	}

	queue := []string{fromID}
	visited := map[string]bool{fromID: true}
	parent := map[string]PathStep{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range t.neighbors(current) {
			if visited[next.ID] {
				continue
			}
			visited[next.ID] = true
			parent[next.ID] = PathStep{ID: current, Via: next.Via}
			if next.ID == toID {
				return reconstructPath(parent, fromID, toID)
			}
			queue = append(queue, next.ID)
		}
	}
	return nil
}

func (t *Tree) neighbors(id string) []PathStep {
	member := t.Member(id)
	if member == nil {
		return nil
	}
	out := make([]PathStep, 0, len(member.Children)+2)
	if p := t.Parent(member); p != nil {
		out = append(out, PathStep{ID: p.ID, Via: EdgeParent})
	}
	if s := t.Spouse(id); s != nil {
		out = append(out, PathStep{ID: s.ID, Via: EdgeSpouse})
	}
	for _, child := range member.Children {
		out = append(out, PathStep{ID: child.ID, Via: EdgeChild})
	}
	return out
}

// reconstructPath walks the BFS parent map back from toID. Each entry maps a
// node to its predecessor and the edge used to reach the node.
func reconstructPath(parent map[string]PathStep, fromID, toID string) []PathStep {
	out := []PathStep{}
	for current := toID; current != fromID; {
		prev, ok := parent[current]
		if !ok {
			return nil
		}
		out = append(out, PathStep{ID: current, Via: prev.Via})
		current = prev.ID
	}
	out = append(out, PathStep{ID: fromID, Via: EdgeStart})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
