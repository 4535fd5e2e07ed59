package vars

import "testing"

func TestVariableMapKeys(t *testing.T) {
	m := map[Variable]int{}

	m[RegisterVariable{Offset: 16, Size: 8}] = 1
	m[RegisterVariable{Offset: 16, Size: 8}] = 2
	m[RegisterVariable{Offset: 16, Size: 4}] = 3
	m[MemoryVariable{Addr: 0x1000, Size: 8}] = 4
	m[TemporaryVariable{ID: 3}] = 5
	m[ConstantVariable{}] = 6

	if len(m) != 5 {
		t.Fatalf("len(m) = %d, want 5 (structurally equal registers must collapse)", len(m))
	}
	if m[RegisterVariable{Offset: 16, Size: 8}] != 2 {
		t.Error("second insert of an equal register should overwrite the first")
	}
}

func TestVariableKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Variable
		kind VarKind
	}{
		{"register", RegisterVariable{Offset: 16, Size: 8}, KindRegister},
		{"memory", MemoryVariable{Addr: 0x1000, Size: 4}, KindMemory},
		{"temporary", TemporaryVariable{ID: 7}, KindTemporary},
		{"constant", ConstantVariable{}, KindConstant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestCodeLocationExternal(t *testing.T) {
	internal := CodeLocation{BlockAddr: 0x1000, StmtIdx: 3}
	if internal.External() {
		t.Error("location with a block address should not be external")
	}

	external := CodeLocation{Procedure: "memcpy"}
	if !external.External() {
		t.Error("procedure-only location should be external")
	}
}

func TestProgramVariableEquality(t *testing.T) {
	loc := CodeLocation{BlockAddr: 0x1000, StmtIdx: 2, InsAddr: 0x1008}
	a := ProgramVariable{Variable: RegisterVariable{Offset: 16, Size: 8}, Location: loc}
	b := ProgramVariable{Variable: RegisterVariable{Offset: 16, Size: 8}, Location: loc}

	if a != b {
		t.Error("program variables with equal variable and location must compare equal")
	}

	c := ProgramVariable{Variable: RegisterVariable{Offset: 16, Size: 8}, Location: CodeLocation{BlockAddr: 0x2000}}
	if a == c {
		t.Error("differing locations must not compare equal")
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"register", RegisterVariable{Offset: 16, Size: 8}.String(), "reg(16:8)"},
		{"memory", MemoryVariable{Addr: 0x1000, Size: 4}.String(), "mem(0x1000:4)"},
		{"temporary", TemporaryVariable{ID: 3}.String(), "tmp(3)"},
		{"constant", ConstantVariable{}.String(), "const"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("String() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
