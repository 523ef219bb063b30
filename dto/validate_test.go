package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"

	"hrtracker/model"
)

func TestPriorityRule(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register: %v", err)
	}
	ok := CreateTaskRequest{StateID: "s1", Title: "Write report", Priority: model.PriorityHigh}
	if err := binding.Validator.ValidateStruct(ok); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	bad := ok
	bad.Priority = "SOMEDAY"
	if err := binding.Validator.ValidateStruct(bad); err == nil {
		t.Fatal("unknown priority accepted")
	}
	none := ok
	none.Priority = ""
	if err := binding.Validator.ValidateStruct(none); err != nil {
		t.Fatalf("empty priority rejected: %v", err)
	}
}

func TestCreateTaskNeedsStateOrParent(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := binding.Validator.ValidateStruct(CreateTaskRequest{Title: "Orphan"}); err == nil {
		t.Fatal("request without state or parent accepted")
	}
	if err := binding.Validator.ValidateStruct(CreateTaskRequest{Title: "Child", ParentID: "t1"}); err != nil {
		t.Fatalf("subtask request rejected: %v", err)
	}
}

func TestEditPriorityPointer(t *testing.T) {
	if err := RegisterValidators(); err != nil {
		t.Fatalf("register: %v", err)
	}
	p := model.Priority("LATER")
	if err := binding.Validator.ValidateStruct(EditTaskRequest{Priority: &p}); err == nil {
		t.Fatal("unknown priority accepted on edit")
	}
	if err := binding.Validator.ValidateStruct(EditTaskRequest{}); err != nil {
		t.Fatalf("empty edit rejected: %v", err)
	}
}
