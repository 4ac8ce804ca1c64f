package validate

import "github.com/flowctl/flowctl/pkg/kb"

// StoreAdapter adapts *kb.Store to the KnowledgeBase interface this
// package depends on, converting the KB's storage-shaped records into the
// validator's own (identical in substance, independently declared) view.
// Kept as an explicit adapter rather than a type alias so pipeline stages
// can be tested against a hand-built fake KnowledgeBase without touching
// SQLite at all.
type StoreAdapter struct {
	Store *kb.Store
}

func (a StoreAdapter) Lookup(nodeType string) (*NodeTypeDescriptor, error) {
	d, err := a.Store.Lookup(nodeType)
	if err != nil || d == nil {
		return nil, err
	}
	return convertDescriptor(d), nil
}

func (a StoreAdapter) ExpandAlias(aliasOrType string) (string, bool) {
	return a.Store.ExpandAlias(aliasOrType)
}

func (a StoreAdapter) SimilarTypes(badType string, limit int) ([]SimilarType, error) {
	results, err := a.Store.SimilarTypes(badType, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SimilarType, len(results))
	for i, r := range results {
		out[i] = SimilarType{Type: r.Type, Score: r.Score, Reason: r.Reason}
	}
	return out, nil
}

func (a StoreAdapter) BreakingChanges(nodeType string, fromVersion float64) ([]BreakingChange, error) {
	results, err := a.Store.BreakingChanges(nodeType, fromVersion)
	if err != nil {
		return nil, err
	}
	out := make([]BreakingChange, len(results))
	for i, r := range results {
		out[i] = BreakingChange{
			FromVersion: r.FromVersion, ToVersion: r.ToVersion,
			Severity: r.Severity, Description: r.Description,
			AutoMigratable: r.AutoMigratable,
		}
	}
	return out, nil
}

func convertDescriptor(d *kb.NodeTypeDescriptor) *NodeTypeDescriptor {
	out := &NodeTypeDescriptor{
		Type: d.Type, Alias: d.Alias, DisplayName: d.DisplayName,
		LatestVersion: d.LatestVersion, SupportedVersions: d.SupportedVersions,
		SupportsOnError: d.SupportsOnError, SupportsRetry: d.SupportsRetry,
	}
	for _, p := range d.Properties {
		pd := PropertyDescriptor{Name: p.Name, Path: p.Path, TypeTag: p.TypeTag, Required: p.Required, Options: p.Options}
		if p.DisplayOptions != nil {
			pd.DisplayOptions = &DisplayOptions{Show: p.DisplayOptions.Show, Hide: p.DisplayOptions.Hide}
		}
		out.Properties = append(out.Properties, pd)
	}
	for _, op := range d.Operations {
		out.Operations = append(out.Operations, OperationDescriptor{Resource: op.Resource, Operation: op.Operation, VisibleOptions: op.VisibleOptions})
	}
	return out
}
