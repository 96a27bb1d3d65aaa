package seccomp

import "testing"

func TestProgram_UnknownProfile(t *testing.T) {
	if _, err := Program("ultra", 0); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestProgram_CompileBuildsNonEmpty(t *testing.T) {
	prog, err := Program("compile", 0x1000)
	if err != nil {
		t.Fatalf("Program(compile) error: %v", err)
	}
	if len(prog) == 0 {
		t.Fatal("expected non-empty compile program")
	}
	// Last instruction must be the default ALLOW return.
	last := prog[len(prog)-1]
	if last.Code != opRetK || last.K != retAllow {
		t.Errorf("compile program does not end in default ALLOW: %+v", last)
	}
}

func TestProgram_GentleBuildsNonEmpty(t *testing.T) {
	prog, err := Program("gentle", 0x2000)
	if err != nil {
		t.Fatalf("Program(gentle) error: %v", err)
	}
	last := prog[len(prog)-1]
	if last.Code != opRetK || last.K != retAllow {
		t.Errorf("gentle program does not end in default ALLOW: %+v", last)
	}
}

func TestProgram_StrictBuildsNonEmpty(t *testing.T) {
	prog, err := Program("strict", 0x3000)
	if err != nil {
		t.Fatalf("Program(strict) error: %v", err)
	}
	last := prog[len(prog)-1]
	if last.Code != opRetK || last.K != retKillProcess {
		t.Errorf("strict program does not end in default KILL: %+v", last)
	}
}

func TestArchCheck_StartsEveryProfile(t *testing.T) {
	for _, profile := range []string{"compile", "gentle", "strict"} {
		prog, err := Program(profile, 1)
		if err != nil {
			t.Fatalf("Program(%s) error: %v", profile, err)
		}
		if prog[0].Code != opLoadAbsW || prog[0].K != offsetArch {
			t.Errorf("%s: first instruction should load arch, got %+v", profile, prog[0])
		}
	}
}

func TestPathEqualityBlock_SplitsPointerIntoTwoWords(t *testing.T) {
	const ptr = uintptr(0x1122334455667788)
	block := pathEqualityBlock(ptr)
	if len(block) != 5 {
		t.Fatalf("expected 5-instruction block, got %d", len(block))
	}
	if block[1].K != uint32(ptr) {
		t.Errorf("low-word check = %#x, want %#x", block[1].K, uint32(ptr))
	}
	if block[3].K != uint32(uint64(ptr)>>32) {
		t.Errorf("high-word check = %#x, want %#x", block[3].K, uint32(uint64(ptr)>>32))
	}
}

func TestWriteFlagsBlocks_MaskIncludesWronlyAndRdwr(t *testing.T) {
	killBlock := writeFlagsKillBlock(1, retKillProcess)
	if killBlock[1].K != oWronly|oRdwr {
		t.Errorf("kill block mask = %#x, want %#x", killBlock[1].K, oWronly|oRdwr)
	}
	allowBlock := writeFlagsAllowBlock(2)
	if allowBlock[1].K != oWronly|oRdwr {
		t.Errorf("allow block mask = %#x, want %#x", allowBlock[1].K, oWronly|oRdwr)
	}
}
