package stellar

// Operation is one manage-data instruction: a nil Value deletes the key,
// anything else writes it.
type Operation struct {
	Key   string
	Value []byte
}

// IsDelete reports whether the operation removes its key.
func (o Operation) IsDelete() bool { return o.Value == nil }

// FieldChange is a scalar attribute with the value the form was populated
// with and the value the user submitted. Original is captured at
// form-population time, not re-read at submit time; two concurrent sessions
// editing the same account can therefore clobber each other's fields
// (last write wins at the ledger).
type FieldChange struct {
	Key      string
	Original string
	Desired  string
}

// CollectionEntry is one submitted row of a repeated-reference collection.
// FormID is form-local and has no on-chain representation; it only ties a
// row to the entry it was loaded from.
type CollectionEntry struct {
	FormID     string
	AccountRef string
}

// LoadedEntry is a collection row as it looked when the form was populated,
// including the numbered key it occupied.
type LoadedEntry struct {
	FormID     string
	AccountRef string
	Key        string
}

// CollectionState pairs a collection's loaded rows with the submitted ones.
type CollectionState struct {
	Name    string
	Loaded  []LoadedEntry
	Desired []CollectionEntry
}

// DesiredState aggregates everything a form submission wants on-chain.
type DesiredState struct {
	AccountID   string
	Fields      []FieldChange
	Collections []CollectionState
	Tags        []string
}

// Reconcile computes the ordered operation list that transforms the
// snapshot into the desired state. It performs no I/O and emits no
// redundant writes: every operation costs a fee, so unchanged fields,
// already-stored collection refs and still-selected tags produce nothing.
//
// Emission order is deterministic: collection deletions, replacement writes
// into freed slots, brand-new allocations, then scalars, then tags.
func Reconcile(snap Snapshot, desired DesiredState, tags *TagRegistry) []Operation {
	var ops []Operation

	for _, coll := range desired.Collections {
		ops = append(ops, reconcileCollection(snap, coll)...)
	}

	for _, f := range desired.Fields {
		if op, ok := reconcileField(f); ok {
			ops = append(ops, op)
		}
	}

	ops = append(ops, reconcileTags(snap, desired.Tags, desired.AccountID, tags)...)

	return ops
}

// reconcileField emits at most one operation for a scalar field: a write
// when the submitted value differs from the loaded one, a delete when a
// previously loaded value was explicitly cleared.
func reconcileField(f FieldChange) (Operation, bool) {
	if f.Desired == f.Original {
		return Operation{}, false
	}
	if f.Desired == "" {
		if f.Original == "" {
			return Operation{}, false
		}
		return Operation{Key: f.Key}, true
	}
	return Operation{Key: f.Key, Value: []byte(f.Desired)}, true
}

// reconcileCollection handles one numbered-key collection.
func reconcileCollection(snap Snapshot, coll CollectionState) []Operation {
	var deletions, replacements, additions []Operation

	// Refs that must not be written again: everything already stored under
	// a numbered key. Replacement refs join the set as they are assigned so
	// one submission never writes the same ref twice.
	seen := snap.Refs(coll.Name)

	desiredByFormID := make(map[string]CollectionEntry, len(coll.Desired))
	for _, d := range coll.Desired {
		if _, dup := desiredByFormID[d.FormID]; !dup {
			desiredByFormID[d.FormID] = d
		}
	}

	// Rows that were loaded from the snapshot and later removed or edited.
	// Removal deletes the numbered key; an edit reuses the freed slot so
	// repeatedly editing one row does not grow the key space.
	consumed := make(map[string]struct{}, len(coll.Loaded))
	for _, loaded := range coll.Loaded {
		consumed[loaded.FormID] = struct{}{}

		current, present := desiredByFormID[loaded.FormID]
		switch {
		case !present || current.AccountRef == "":
			deletions = append(deletions, Operation{Key: loaded.Key})
		case current.AccountRef != loaded.AccountRef:
			deletions = append(deletions, Operation{Key: loaded.Key})
			if _, dup := seen[current.AccountRef]; !dup {
				replacements = append(replacements, Operation{
					Key:   loaded.Key,
					Value: []byte(current.AccountRef),
				})
				seen[current.AccountRef] = struct{}{}
			}
		}
	}

	// Novel rows: not tied to a loaded entry, deduplicated within the form
	// (first occurrence wins) and against everything already on-chain.
	var novel []CollectionEntry
	for _, d := range coll.Desired {
		if d.AccountRef == "" {
			continue
		}
		if _, handled := consumed[d.FormID]; handled {
			continue
		}
		if _, dup := seen[d.AccountRef]; dup {
			continue
		}
		seen[d.AccountRef] = struct{}{}
		novel = append(novel, d)
	}

	ids := NextCollectionIDs(snap, coll.Name, len(novel))
	for i, d := range novel {
		additions = append(additions, Operation{
			Key:   FormatCollectionKey(coll.Name, ids[i]),
			Value: []byte(d.AccountRef),
		})
	}

	ops := make([]Operation, 0, len(deletions)+len(replacements)+len(additions))
	ops = append(ops, deletions...)
	ops = append(ops, replacements...)
	ops = append(ops, additions...)
	return ops
}

// reconcileTags converges the on-chain tag keys to exactly the selected
// set: writes for newly selected tags, deletes for deselected ones. The
// stored value of a tag key is the account's own address; presence is the
// signal. Keys with the tag prefix that the registry does not know are left
// alone.
func reconcileTags(snap Snapshot, selected []string, accountID string, tags *TagRegistry) []Operation {
	var ops []Operation

	selectedIDs := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := tags.ByID(id); !ok {
			continue
		}
		selectedIDs[id] = struct{}{}
	}

	written := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		tag, ok := tags.ByID(id)
		if !ok {
			continue
		}
		if _, dup := written[tag.Key]; dup {
			continue
		}
		if _, exists := snap[tag.Key]; !exists {
			ops = append(ops, Operation{Key: tag.Key, Value: []byte(accountID)})
			written[tag.Key] = struct{}{}
		}
	}

	for _, tag := range tags.Tags() {
		if _, exists := snap[tag.Key]; !exists {
			continue
		}
		if _, wanted := selectedIDs[tag.ID]; !wanted {
			ops = append(ops, Operation{Key: tag.Key})
		}
	}

	return ops
}
