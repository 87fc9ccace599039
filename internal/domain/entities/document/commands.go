package document

import (
	"fmt"
)

// Op names a document command.
type Op string

const (
	OpInsertSection  Op = "insert_section"
	OpInsertColumn   Op = "insert_column"
	OpInsertWidget   Op = "insert_widget"
	OpDelete         Op = "delete"
	OpUpdateProperty Op = "update_property"
	OpMove           Op = "move"
	OpReplaceAll     Op = "replace_all"
	OpSelect         Op = "select"
	OpDeselect       Op = "deselect"
	OpSetDevice      Op = "set_device"
	OpUndo           Op = "undo"
	OpRedo           Op = "redo"
	OpCommit         Op = "commit"
)

// Command is a serializable editor intent. Fields are read according to Op.
type Command struct {
	Op           Op      `json:"op"`
	NodeID       string  `json:"nodeId,omitempty"`
	ParentID     string  `json:"parentId,omitempty"`
	Type         string  `json:"type,omitempty"`
	Key          string  `json:"key,omitempty"`
	Value        any     `json:"value,omitempty"`
	FromParentID string  `json:"fromParentId,omitempty"`
	ToParentID   string  `json:"toParentId,omitempty"`
	FromIndex    int     `json:"fromIndex,omitempty"`
	ToIndex      int     `json:"toIndex,omitempty"`
	Sections     []*Node `json:"sections,omitempty"`
	Device       Device  `json:"device,omitempty"`
}

// Result reports what a command did.
type Result struct {
	Op       Op     `json:"op"`
	Changed  bool   `json:"changed"`
	Recorded bool   `json:"recorded"`
	NodeID   string `json:"nodeId,omitempty"`
}

// UnknownOpError is returned by Apply for an unrecognised Op.
type UnknownOpError struct {
	Op Op
}

func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("unknown command op %q", e.Op)
}

// Apply is the single reducer for document state. Commands that address
// missing nodes are no-ops and report Changed=false.
func (d *Document) Apply(cmd Command) (Result, error) {
	before := d.revisions
	res := Result{Op: cmd.Op}

	switch cmd.Op {
	case OpInsertSection:
		if n := d.InsertSection(); n != nil {
			res.Changed, res.NodeID = true, n.ID
		}
	case OpInsertColumn:
		if n := d.InsertColumn(cmd.ParentID); n != nil {
			res.Changed, res.NodeID = true, n.ID
		}
	case OpInsertWidget:
		if n := d.InsertWidget(cmd.ParentID, cmd.Type); n != nil {
			res.Changed, res.NodeID = true, n.ID
		}
	case OpDelete:
		res.Changed = d.DeleteNode(cmd.NodeID)
		res.NodeID = cmd.NodeID
	case OpUpdateProperty:
		res.Changed = d.UpdateProperty(cmd.NodeID, cmd.Key, cmd.Value)
		res.NodeID = cmd.NodeID
	case OpMove:
		res.Changed = d.Move(cmd.NodeID, cmd.FromParentID, cmd.ToParentID, cmd.FromIndex, cmd.ToIndex)
		res.NodeID = cmd.NodeID
	case OpReplaceAll:
		d.ReplaceAll(cmd.Sections)
		res.Changed = true
	case OpSelect:
		res.Changed = d.Select(cmd.NodeID)
		res.NodeID = cmd.NodeID
	case OpDeselect:
		res.Changed = d.Deselect()
	case OpSetDevice:
		res.Changed = d.SetDevice(cmd.Device)
	case OpUndo:
		res.Changed = d.Undo()
	case OpRedo:
		res.Changed = d.Redo()
	case OpCommit:
		res.Changed = d.CommitEdits()
	default:
		return res, &UnknownOpError{Op: cmd.Op}
	}

	res.Recorded = d.revisions != before
	return res, nil
}

// Structural reports whether the op can change the tree shape.
func (op Op) Structural() bool {
	switch op {
	case OpInsertSection, OpInsertColumn, OpInsertWidget, OpDelete, OpMove, OpReplaceAll, OpUndo, OpRedo:
		return true
	}
	return false
}
