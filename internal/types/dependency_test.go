package types

import "testing"

func TestDependencyValidate(t *testing.T) {
	tests := []struct {
		name    string
		dep     Dependency
		wantErr bool
		wantCode Code
	}{
		{
			name: "valid blocks edge",
			dep:  Dependency{TaskID: "tsk-1", DependsOnTaskID: "tsk-2", Type: DepBlocks},
		},
		{
			name:    "missing task id",
			dep:     Dependency{DependsOnTaskID: "tsk-2"},
			wantErr: true,
			wantCode: CodeValidation,
		},
		{
			name:    "missing depends on",
			dep:     Dependency{TaskID: "tsk-1"},
			wantErr: true,
			wantCode: CodeValidation,
		},
		{
			name:    "invalid type",
			dep:     Dependency{TaskID: "tsk-1", DependsOnTaskID: "tsk-2", Type: DependencyType("nope")},
			wantErr: true,
			wantCode: CodeValidation,
		},
		{
			name:    "self dependency",
			dep:     Dependency{TaskID: "tsk-1", DependsOnTaskID: "tsk-1", Type: DepBlocks},
			wantErr: true,
			wantCode: CodeSelfDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dep.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				te, ok := AsError(err)
				if !ok {
					t.Fatalf("expected *Error, got %T", err)
				}
				if te.Code != tt.wantCode {
					t.Fatalf("Code = %s, want %s", te.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestDependencyTypeValid(t *testing.T) {
	for _, d := range []DependencyType{DepBlocks, DepRelated, DepParentChild} {
		if !d.Valid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if DependencyType("unknown").Valid() {
		t.Errorf("unknown dependency type reported valid")
	}
}
