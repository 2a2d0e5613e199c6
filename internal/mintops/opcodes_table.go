package mintops

// Opcode is the ordinal of one row in the table below. It is mint's own
// numbering (see the package doc comment: reproducing the source's numbering
// is an explicit non-goal).
type Opcode int32

// The table is built once at init time via define(name, argKind, pop, push).
// Families that repeat per stack-slot type (arithmetic, comparisons,
// conditional branches, loads/stores) are generated by small loops instead of
// being spelled out four times, matching how mintops.def itself is a flat
// macro-generated list rather than fully hand-written in the source.
var (
	NOP   = define("NOP", ArgNone, 0, 0)
	BREAK = define("BREAK", ArgNone, 0, 0)

	LDNULL = define("LDNULL", ArgNone, 0, 1)

	// LDSTR carries a data-item index holding the IL string token. The
	// dispatch loop has no case for it, so executing one traps as an
	// unimplemented opcode.
	LDSTR = define("LDSTR", ArgUShortInt, 0, 1)

	// Constant loads (§4.4.4): dedicated zero-operand ops for the common
	// small integers, carrying the immediate in-stream otherwise.
	LDC_I4_M1 = define("LDC_I4_M1", ArgNone, 0, 1)
	LDC_I4_0  = define("LDC_I4_0", ArgNone, 0, 1)
	LDC_I4_1  = define("LDC_I4_1", ArgNone, 0, 1)
	LDC_I4_2  = define("LDC_I4_2", ArgNone, 0, 1)
	LDC_I4_3  = define("LDC_I4_3", ArgNone, 0, 1)
	LDC_I4_4  = define("LDC_I4_4", ArgNone, 0, 1)
	LDC_I4_5  = define("LDC_I4_5", ArgNone, 0, 1)
	LDC_I4_6  = define("LDC_I4_6", ArgNone, 0, 1)
	LDC_I4_7  = define("LDC_I4_7", ArgNone, 0, 1)
	LDC_I4_8  = define("LDC_I4_8", ArgNone, 0, 1)
	LDC_I4_S  = define("LDC_I4_S", ArgShortInt, 0, 1)
	LDC_I4    = define("LDC_I4", ArgInt, 0, 1)
	LDC_I8_0  = define("LDC_I8_0", ArgNone, 0, 1)
	LDC_I8    = define("LDC_I8", ArgLongInt, 0, 1)
	LDC_R4    = define("LDC_R4", ArgFloat, 0, 1)
	LDC_R8    = define("LDC_R8", ArgDouble, 0, 1)

	DUP  = define("DUP", ArgNone, 1, 2)
	POP  = define("POP", ArgNone, 1, 0)
	SWAP = define("SWAP", ArgTwoShorts, 0, 0)
	PICK = define("PICK", ArgUShortInt, 0, 1)

	// Locals/args: prologue copy (STINARG_*), typed load/store/address-of.
	// slotWords indexes the family below: I4, I8, R8, O, VT.
	LDLOC_I4 Opcode
	LDLOC_I8 Opcode
	LDLOC_R8 Opcode
	LDLOC_O  Opcode
	LDLOC_VT Opcode
	STLOC_I4 Opcode
	STLOC_I8 Opcode
	STLOC_R8 Opcode
	STLOC_O  Opcode
	STLOC_VT Opcode
	LDLOCA   = define("LDLOCA", ArgUShortInt, 0, 1)

	LDARG_I4 Opcode
	LDARG_I8 Opcode
	LDARG_R8 Opcode
	LDARG_O  Opcode
	LDARG_VT Opcode
	STARG_I4 Opcode
	STARG_I8 Opcode
	STARG_R8 Opcode
	STARG_O  Opcode
	STARG_VT Opcode
	LDARGA   = define("LDARGA", ArgUShortInt, 0, 1)

	// STINARG_* run in the callee prologue to copy the caller-laid-out args
	// into the callee's own offset layout (§4.3 allocateFrame).
	STINARG_I4 Opcode
	STINARG_I8 Opcode
	STINARG_R8 Opcode
	STINARG_O  Opcode
	STINARG_VT Opcode

	// INITLOCAL zeroes the Slots word of every local in the {start, count}
	// range its operand packs. The transformer does not emit it; frame-entry
	// zeroing goes through CompiledMethod.ZeroInit instead.
	INITLOCAL = define("INITLOCAL", ArgTwoShorts, 0, 0)

	MOV_I4 = define("MOV_I4", ArgTwoShorts, 0, 0)
	MOV_I8 = define("MOV_I8", ArgTwoShorts, 0, 0)
	MOV_R8 = define("MOV_R8", ArgTwoShorts, 0, 0)
	MOV_O  = define("MOV_O", ArgTwoShorts, 0, 0)
	MOV_VT = define("MOV_VT", ArgShortAndInt, 0, 0) // {dst,src} locals + size

	// INITOBJ zeroes `size` bytes at the managed pointer on top of the stack
	// (the il.Initobj target address), for value types that need their
	// default value materialized rather than loaded as a constant.
	INITOBJ = define("INITOBJ", ArgInt, 1, 0)

	// Conversions (§4.4.4, §7): cross-table indexed by {source, target}.
	// Checked variants trap Overflow on out-of-range source values.
	CONV_I4_I8    = define("CONV_I4_I8", ArgNone, 1, 1)
	CONV_I8_I4    = define("CONV_I8_I4", ArgNone, 1, 1)
	CONV_I4_R8    = define("CONV_I4_R8", ArgNone, 1, 1)
	CONV_I8_R8    = define("CONV_I8_R8", ArgNone, 1, 1)
	CONV_U4_R8    = define("CONV_U4_R8", ArgNone, 1, 1)
	CONV_U8_R8    = define("CONV_U8_R8", ArgNone, 1, 1)
	CONV_R8_I4    = define("CONV_R8_I4", ArgNone, 1, 1)
	CONV_R8_I8    = define("CONV_R8_I8", ArgNone, 1, 1)
	CONV_R4_R8    = define("CONV_R4_R8", ArgNone, 1, 1)
	CONV_R8_R4    = define("CONV_R8_R4", ArgNone, 1, 1)
	CONV_I1_I4    = define("CONV_I1_I4", ArgNone, 1, 1)
	CONV_U1_I4    = define("CONV_U1_I4", ArgNone, 1, 1)
	CONV_I2_I4    = define("CONV_I2_I4", ArgNone, 1, 1)
	CONV_U2_I4    = define("CONV_U2_I4", ArgNone, 1, 1)
	CONV_OVF_I4_R8  = define("CONV_OVF_I4_R8", ArgNone, 1, 1)
	CONV_OVF_U4_R8  = define("CONV_OVF_U4_R8", ArgNone, 1, 1)
	CONV_OVF_I4_I8  = define("CONV_OVF_I4_I8", ArgNone, 1, 1)
	CONV_OVF_U4_I8  = define("CONV_OVF_U4_I8", ArgNone, 1, 1)
	CONV_OVF_I8_R8  = define("CONV_OVF_I8_R8", ArgNone, 1, 1)
	CONV_OVF_U8_R8  = define("CONV_OVF_U8_R8", ArgNone, 1, 1)
	CONV_OVF_I1_I4  = define("CONV_OVF_I1_I4", ArgNone, 1, 1)
	CONV_OVF_U1_I4  = define("CONV_OVF_U1_I4", ArgNone, 1, 1)
	CKFINITE        = define("CKFINITE", ArgNone, 1, 1)

	// Unary ops (§4.4.4 arithmetic): I4/I8/R8 flavors selected by top-of-stack
	// type at transform time, so each gets its own dedicated mint opcode.
	NEG_I4 Opcode
	NEG_I8 Opcode
	NEG_R8 Opcode
	NOT_I4 Opcode
	NOT_I8 Opcode

	ADD_I4 Opcode
	ADD_I8 Opcode
	ADD_R8 Opcode
	SUB_I4 Opcode
	SUB_I8 Opcode
	SUB_R8 Opcode
	MUL_I4 Opcode
	MUL_I8 Opcode
	MUL_R8 Opcode

	// *_OVF_* and *_OVF_UN_* are distinct from their unchecked counterparts
	// above: `add` must wrap silently on
	// overflow while `add.ovf`/`add.ovf.un` must trap OverflowException
	// (§7), so the dispatch loop needs to tell them apart by opcode alone
	// rather than re-deriving checkedness some other way.
	ADD_OVF_I4    Opcode
	ADD_OVF_UN_I4 Opcode
	SUB_OVF_I4    Opcode
	SUB_OVF_UN_I4 Opcode
	MUL_OVF_I4    Opcode
	MUL_OVF_UN_I4 Opcode
	ADD_OVF_I8    Opcode
	ADD_OVF_UN_I8 Opcode
	SUB_OVF_I8    Opcode
	SUB_OVF_UN_I8 Opcode
	MUL_OVF_I8    Opcode
	MUL_OVF_UN_I8 Opcode
	DIV_I4    Opcode
	DIV_UN_I4 Opcode
	DIV_I8    Opcode
	DIV_UN_I8 Opcode
	DIV_R8    Opcode
	REM_I4    Opcode
	REM_UN_I4 Opcode
	REM_I8    Opcode
	REM_UN_I8 Opcode
	REM_R8    Opcode
	AND_I4 Opcode
	AND_I8 Opcode
	OR_I4  Opcode
	OR_I8  Opcode
	XOR_I4 Opcode
	XOR_I8 Opcode
	SHL_I4 Opcode
	SHL_I8 Opcode
	SHR_I4    Opcode
	SHR_UN_I4 Opcode
	SHR_I8    Opcode
	SHR_UN_I8 Opcode

	CEQ_I4    Opcode
	CEQ_I8    Opcode
	CEQ_R8    Opcode
	CEQ0_I4   = define("CEQ0_I4", ArgNone, 1, 1)
	CGT_I4    Opcode
	CGT_I8    Opcode
	CGT_R8    Opcode
	CGT_UN_I4 Opcode
	CGT_UN_I8 Opcode
	CGT_UN_R8 Opcode
	CLT_I4    Opcode
	CLT_I8    Opcode
	CLT_R8    Opcode
	CLT_UN_I4 Opcode
	CLT_UN_I8 Opcode
	CLT_UN_R8 Opcode

	BR      = define("BR", ArgBranch, 0, 0)
	BR_S    = define("BR_S", ArgShortBranch, 0, 0)
	BRFALSE_I4 Opcode
	BRTRUE_I4  Opcode
	BRFALSE_I8 Opcode
	BRTRUE_I8  Opcode
	BRFALSE_R8 Opcode
	BRTRUE_R8  Opcode
	BEQ_I4    Opcode
	BNE_UN_I4 Opcode
	BGE_I4    Opcode
	BGT_I4    Opcode
	BLE_I4    Opcode
	BLT_I4    Opcode
	BGE_UN_I4 Opcode
	BGT_UN_I4 Opcode
	BLE_UN_I4 Opcode
	BLT_UN_I4 Opcode
	BEQ_I8    Opcode
	BNE_UN_I8 Opcode
	BGE_I8    Opcode
	BGT_I8    Opcode
	BLE_I8    Opcode
	BLT_I8    Opcode
	BGE_UN_I8 Opcode
	BGT_UN_I8 Opcode
	BLE_UN_I8 Opcode
	BLT_UN_I8 Opcode
	BEQ_R8    Opcode
	BNE_UN_R8 Opcode
	BGE_R8    Opcode
	BGT_R8    Opcode
	BLE_R8    Opcode
	BLT_R8    Opcode
	BGE_UN_R8 Opcode
	BGT_UN_R8 Opcode
	BLE_UN_R8 Opcode
	BLT_UN_R8 Opcode

	SWITCH = define("SWITCH", ArgSwitch, 1, 0)

	CALL     = define("CALL", ArgMethodToken, VarArgs, VarArgs)
	CALLVIRT = define("CALLVIRT", ArgMethodToken, VarArgs, VarArgs)
	VCALL    = define("VCALL", ArgMethodToken, VarArgs, VarArgs)
	CALLI    = define("CALLI", ArgSignatureToken, VarArgs, VarArgs)
	JIT_CALL = define("JIT_CALL", ArgMethodToken, VarArgs, VarArgs)
	VTRESULT = define("VTRESULT", ArgShortAndInt, 0, 0)

	NEWOBJ        = define("NEWOBJ", ArgMethodToken, VarArgs, 1)
	NEWOBJ_VT     = define("NEWOBJ_VT", ArgMethodToken, VarArgs, 1)
	NEWOBJ_STRING = define("NEWOBJ_STRING", ArgMethodToken, VarArgs, 1)
	NEWOBJ_ARRAY  = define("NEWOBJ_ARRAY", ArgClassToken, VarArgs, 1)
	NEWARR        = define("NEWARR", ArgClassToken, 1, 1)

	LDFLD_I1 Opcode
	LDFLD_U1 Opcode
	LDFLD_I2 Opcode
	LDFLD_U2 Opcode
	LDFLD_I4 Opcode
	LDFLD_I8 Opcode
	LDFLD_R8 Opcode
	LDFLD_O  Opcode
	LDFLD_VT Opcode
	STFLD_I1 Opcode
	STFLD_I2 Opcode
	STFLD_I4 Opcode
	STFLD_I8 Opcode
	STFLD_R8 Opcode
	STFLD_O  Opcode
	STFLD_VT Opcode
	LDFLDA   = define("LDFLDA", ArgFieldToken, 1, 1)
	LDRMFLD  = define("LDRMFLD", ArgFieldToken, 1, 1)
	STRMFLD  = define("STRMFLD", ArgFieldToken, 2, 0)

	LDSFLD_I4 Opcode
	LDSFLD_I8 Opcode
	LDSFLD_R8 Opcode
	LDSFLD_O  Opcode
	LDSFLD_VT Opcode
	STSFLD_I4 Opcode
	STSFLD_I8 Opcode
	STSFLD_R8 Opcode
	STSFLD_O  Opcode
	STSFLD_VT Opcode
	LDSFLDA   = define("LDSFLDA", ArgFieldToken, 0, 1)

	LDELEM_I1 Opcode
	LDELEM_U1 Opcode
	LDELEM_I2 Opcode
	LDELEM_U2 Opcode
	LDELEM_I4 Opcode
	LDELEM_I8 Opcode
	LDELEM_R8 Opcode
	LDELEM_REF Opcode
	LDELEM_VT  Opcode
	STELEM_I1 Opcode
	STELEM_I2 Opcode
	STELEM_I4 Opcode
	STELEM_I8 Opcode
	STELEM_R8 Opcode
	STELEM_REF Opcode
	STELEM_VT  Opcode
	LDELEMA    = define("LDELEMA", ArgClassToken, VarArgs, 1)
	LDELEMA_TC = define("LDELEMA_TC", ArgClassToken, VarArgs, 1)
	LDLEN      = define("LDLEN", ArgNone, 1, 1)
	ARRAY_RANK = define("ARRAY_RANK", ArgNone, 1, 1)
	GETCHR     = define("GETCHR", ArgNone, 2, 1)
	STRLEN     = define("STRLEN", ArgNone, 1, 1)

	LDIND_I1 Opcode
	LDIND_U1 Opcode
	LDIND_I2 Opcode
	LDIND_U2 Opcode
	LDIND_I4 Opcode
	LDIND_I8 Opcode
	LDIND_R8 Opcode
	LDIND_O  Opcode
	STIND_I1 Opcode
	STIND_I2 Opcode
	STIND_I4 Opcode
	STIND_I8 Opcode
	STIND_R8 Opcode
	STIND_O  Opcode

	BOX        = define("BOX", ArgClassToken, 1, 1)
	UNBOX      = define("UNBOX", ArgClassToken, 1, 1)
	UNBOX_ANY  = define("UNBOX_ANY", ArgClassToken, 1, 1)
	CASTCLASS  = define("CASTCLASS", ArgClassToken, 1, 1)
	ISINST     = define("ISINST", ArgClassToken, 1, 1)

	THROW    = define("THROW", ArgNone, 1, 0)
	RETHROW  = define("RETHROW", ArgNone, 0, 0)
	LEAVE    = define("LEAVE", ArgBranch, 0, 0)
	LEAVE_S  = define("LEAVE_S", ArgShortBranch, 0, 0)
	LEAVE_CHECK   = define("LEAVE_CHECK", ArgBranch, 0, 0)
	LEAVE_S_CHECK = define("LEAVE_S_CHECK", ArgShortBranch, 0, 0)
	ENDFINALLY = define("ENDFINALLY", ArgNone, 0, 0)
	ENDFILTER  = define("ENDFILTER", ArgNone, 1, 0)
	CALL_HANDLER = define("CALL_HANDLER", ArgBranch, 0, 0)

	RET      = define("RET", ArgNone, 1, 0)
	RET_VOID = define("RET_VOID", ArgNone, 0, 0)
	RET_VT   = define("RET_VT", ArgUShortInt, 1, 0)

	MONO_MEMORY_BARRIER = define("MONO_MEMORY_BARRIER", ArgNone, 0, 0)

	SAFEPOINT      = define("SAFEPOINT", ArgNone, 0, 0)
	SDB_SEQ_POINT  = define("SDB_SEQ_POINT", ArgNone, 0, 0)
	SDB_INTR_LOC   = define("SDB_INTR_LOC", ArgNone, 0, 0)
	SDB_BREAKPOINT = define("SDB_BREAKPOINT", ArgNone, 0, 0)
)

func init() {
	LDLOC_I4, LDLOC_I8, LDLOC_R8, LDLOC_O, LDLOC_VT = defineSlotFamily("LDLOC", ArgUShortInt, 0, 1)
	STLOC_I4, STLOC_I8, STLOC_R8, STLOC_O, STLOC_VT = defineSlotFamily("STLOC", ArgUShortInt, 1, 0)
	LDARG_I4, LDARG_I8, LDARG_R8, LDARG_O, LDARG_VT = defineSlotFamily("LDARG", ArgUShortInt, 0, 1)
	STARG_I4, STARG_I8, STARG_R8, STARG_O, STARG_VT = defineSlotFamily("STARG", ArgUShortInt, 1, 0)
	STINARG_I4, STINARG_I8, STINARG_R8, STINARG_O, STINARG_VT = defineSlotFamily("STINARG", ArgUShortInt, 0, 0)

	NEG_I4 = define("NEG_I4", ArgNone, 1, 1)
	NEG_I8 = define("NEG_I8", ArgNone, 1, 1)
	NEG_R8 = define("NEG_R8", ArgNone, 1, 1)
	NOT_I4 = define("NOT_I4", ArgNone, 1, 1)
	NOT_I8 = define("NOT_I8", ArgNone, 1, 1)

	ADD_I4, ADD_I8, ADD_R8 = defineBinopTriple("ADD")
	SUB_I4, SUB_I8, SUB_R8 = defineBinopTriple("SUB")
	MUL_I4, MUL_I8, MUL_R8 = defineBinopTriple("MUL")
	ADD_OVF_I4 = define("ADD_OVF_I4", ArgNone, 2, 1)
	ADD_OVF_UN_I4 = define("ADD_OVF_UN_I4", ArgNone, 2, 1)
	SUB_OVF_I4 = define("SUB_OVF_I4", ArgNone, 2, 1)
	SUB_OVF_UN_I4 = define("SUB_OVF_UN_I4", ArgNone, 2, 1)
	MUL_OVF_I4 = define("MUL_OVF_I4", ArgNone, 2, 1)
	MUL_OVF_UN_I4 = define("MUL_OVF_UN_I4", ArgNone, 2, 1)
	ADD_OVF_I8 = define("ADD_OVF_I8", ArgNone, 2, 1)
	ADD_OVF_UN_I8 = define("ADD_OVF_UN_I8", ArgNone, 2, 1)
	SUB_OVF_I8 = define("SUB_OVF_I8", ArgNone, 2, 1)
	SUB_OVF_UN_I8 = define("SUB_OVF_UN_I8", ArgNone, 2, 1)
	MUL_OVF_I8 = define("MUL_OVF_I8", ArgNone, 2, 1)
	MUL_OVF_UN_I8 = define("MUL_OVF_UN_I8", ArgNone, 2, 1)
	DIV_I4 = define("DIV_I4", ArgNone, 2, 1)
	DIV_UN_I4 = define("DIV_UN_I4", ArgNone, 2, 1)
	DIV_I8 = define("DIV_I8", ArgNone, 2, 1)
	DIV_UN_I8 = define("DIV_UN_I8", ArgNone, 2, 1)
	DIV_R8 = define("DIV_R8", ArgNone, 2, 1)
	REM_I4 = define("REM_I4", ArgNone, 2, 1)
	REM_UN_I4 = define("REM_UN_I4", ArgNone, 2, 1)
	REM_I8 = define("REM_I8", ArgNone, 2, 1)
	REM_UN_I8 = define("REM_UN_I8", ArgNone, 2, 1)
	REM_R8 = define("REM_R8", ArgNone, 2, 1)
	AND_I4, AND_I8, _ = defineBinopPairNoFloat("AND")
	OR_I4, OR_I8, _ = defineBinopPairNoFloat("OR")
	XOR_I4, XOR_I8, _ = defineBinopPairNoFloat("XOR")
	SHL_I4 = define("SHL_I4", ArgNone, 2, 1)
	SHL_I8 = define("SHL_I8", ArgNone, 2, 1)
	SHR_I4 = define("SHR_I4", ArgNone, 2, 1)
	SHR_UN_I4 = define("SHR_UN_I4", ArgNone, 2, 1)
	SHR_I8 = define("SHR_I8", ArgNone, 2, 1)
	SHR_UN_I8 = define("SHR_UN_I8", ArgNone, 2, 1)

	CEQ_I4, CEQ_I8, CEQ_R8 = defineBinopTriple("CEQ")
	CGT_I4, CGT_I8, CGT_R8 = defineBinopTriple("CGT")
	CGT_UN_I4, CGT_UN_I8, CGT_UN_R8 = defineBinopTriple("CGT_UN")
	CLT_I4, CLT_I8, CLT_R8 = defineBinopTriple("CLT")
	CLT_UN_I4, CLT_UN_I8, CLT_UN_R8 = defineBinopTriple("CLT_UN")

	BRFALSE_I4 = define("BRFALSE_I4", ArgBranch, 1, 0)
	BRTRUE_I4 = define("BRTRUE_I4", ArgBranch, 1, 0)
	BRFALSE_I8 = define("BRFALSE_I8", ArgBranch, 1, 0)
	BRTRUE_I8 = define("BRTRUE_I8", ArgBranch, 1, 0)
	BRFALSE_R8 = define("BRFALSE_R8", ArgBranch, 1, 0)
	BRTRUE_R8 = define("BRTRUE_R8", ArgBranch, 1, 0)

	BEQ_I4 = define("BEQ_I4", ArgBranch, 2, 0)
	BNE_UN_I4 = define("BNE_UN_I4", ArgBranch, 2, 0)
	BGE_I4 = define("BGE_I4", ArgBranch, 2, 0)
	BGT_I4 = define("BGT_I4", ArgBranch, 2, 0)
	BLE_I4 = define("BLE_I4", ArgBranch, 2, 0)
	BLT_I4 = define("BLT_I4", ArgBranch, 2, 0)
	BGE_UN_I4 = define("BGE_UN_I4", ArgBranch, 2, 0)
	BGT_UN_I4 = define("BGT_UN_I4", ArgBranch, 2, 0)
	BLE_UN_I4 = define("BLE_UN_I4", ArgBranch, 2, 0)
	BLT_UN_I4 = define("BLT_UN_I4", ArgBranch, 2, 0)
	BEQ_I8 = define("BEQ_I8", ArgBranch, 2, 0)
	BNE_UN_I8 = define("BNE_UN_I8", ArgBranch, 2, 0)
	BGE_I8 = define("BGE_I8", ArgBranch, 2, 0)
	BGT_I8 = define("BGT_I8", ArgBranch, 2, 0)
	BLE_I8 = define("BLE_I8", ArgBranch, 2, 0)
	BLT_I8 = define("BLT_I8", ArgBranch, 2, 0)
	BGE_UN_I8 = define("BGE_UN_I8", ArgBranch, 2, 0)
	BGT_UN_I8 = define("BGT_UN_I8", ArgBranch, 2, 0)
	BLE_UN_I8 = define("BLE_UN_I8", ArgBranch, 2, 0)
	BLT_UN_I8 = define("BLT_UN_I8", ArgBranch, 2, 0)
	BEQ_R8 = define("BEQ_R8", ArgBranch, 2, 0)
	BNE_UN_R8 = define("BNE_UN_R8", ArgBranch, 2, 0)
	BGE_R8 = define("BGE_R8", ArgBranch, 2, 0)
	BGT_R8 = define("BGT_R8", ArgBranch, 2, 0)
	BLE_R8 = define("BLE_R8", ArgBranch, 2, 0)
	BLT_R8 = define("BLT_R8", ArgBranch, 2, 0)
	BGE_UN_R8 = define("BGE_UN_R8", ArgBranch, 2, 0)
	BGT_UN_R8 = define("BGT_UN_R8", ArgBranch, 2, 0)
	BLE_UN_R8 = define("BLE_UN_R8", ArgBranch, 2, 0)
	BLT_UN_R8 = define("BLT_UN_R8", ArgBranch, 2, 0)

	LDFLD_I1, LDFLD_U1, LDFLD_I2, LDFLD_U2, LDFLD_I4, LDFLD_I8, LDFLD_R8, LDFLD_O, LDFLD_VT = defineLdfldFamily()
	STFLD_I1, STFLD_I2, STFLD_I4, STFLD_I8, STFLD_R8, STFLD_O, STFLD_VT = defineStfldFamily()
	LDSFLD_I4, LDSFLD_I8, LDSFLD_R8, LDSFLD_O, LDSFLD_VT = defineLdsfldFamily()
	STSFLD_I4, STSFLD_I8, STSFLD_R8, STSFLD_O, STSFLD_VT = defineStsfldFamily()
	LDELEM_I1, LDELEM_U1, LDELEM_I2, LDELEM_U2, LDELEM_I4, LDELEM_I8, LDELEM_R8, LDELEM_REF, LDELEM_VT = defineLdelemFamily()
	STELEM_I1, STELEM_I2, STELEM_I4, STELEM_I8, STELEM_R8, STELEM_REF, STELEM_VT = defineStelemFamily()
	LDIND_I1, LDIND_U1, LDIND_I2, LDIND_U2, LDIND_I4, LDIND_I8, LDIND_R8, LDIND_O = defineLdindFamily()
	STIND_I1, STIND_I2, STIND_I4, STIND_I8, STIND_R8, STIND_O = defineStindFamily()
}

func defineSlotFamily(prefix string, arg ArgKind, pop, push int) (i4, i8, r8, o, vt Opcode) {
	i4 = define(prefix+"_I4", arg, pop, push)
	i8 = define(prefix+"_I8", arg, pop, push)
	r8 = define(prefix+"_R8", arg, pop, push)
	o = define(prefix+"_O", arg, pop, push)
	vt = define(prefix+"_VT", ArgShortAndInt, pop, push) // carries size alongside the slot index
	return
}

func defineBinopTriple(prefix string) (i4, i8, r8 Opcode) {
	i4 = define(prefix+"_I4", ArgNone, 2, 1)
	i8 = define(prefix+"_I8", ArgNone, 2, 1)
	r8 = define(prefix+"_R8", ArgNone, 2, 1)
	return
}

func defineBinopPairNoFloat(prefix string) (i4, i8, r8 Opcode) {
	i4 = define(prefix+"_I4", ArgNone, 2, 1)
	i8 = define(prefix+"_I8", ArgNone, 2, 1)
	return i4, i8, 0
}

func defineLdfldFamily() (i1, u1, i2, u2, i4, i8, r8, o, vt Opcode) {
	i1 = define("LDFLD_I1", ArgFieldToken, 1, 1)
	u1 = define("LDFLD_U1", ArgFieldToken, 1, 1)
	i2 = define("LDFLD_I2", ArgFieldToken, 1, 1)
	u2 = define("LDFLD_U2", ArgFieldToken, 1, 1)
	i4 = define("LDFLD_I4", ArgFieldToken, 1, 1)
	i8 = define("LDFLD_I8", ArgFieldToken, 1, 1)
	r8 = define("LDFLD_R8", ArgFieldToken, 1, 1)
	o = define("LDFLD_O", ArgFieldToken, 1, 1)
	vt = define("LDFLD_VT", ArgFieldToken, 1, 1)
	return
}

func defineStfldFamily() (i1, i2, i4, i8, r8, o, vt Opcode) {
	i1 = define("STFLD_I1", ArgFieldToken, 2, 0)
	i2 = define("STFLD_I2", ArgFieldToken, 2, 0)
	i4 = define("STFLD_I4", ArgFieldToken, 2, 0)
	i8 = define("STFLD_I8", ArgFieldToken, 2, 0)
	r8 = define("STFLD_R8", ArgFieldToken, 2, 0)
	o = define("STFLD_O", ArgFieldToken, 2, 0)
	vt = define("STFLD_VT", ArgFieldToken, 2, 0)
	return
}

func defineLdsfldFamily() (i4, i8, r8, o, vt Opcode) {
	i4 = define("LDSFLD_I4", ArgFieldToken, 0, 1)
	i8 = define("LDSFLD_I8", ArgFieldToken, 0, 1)
	r8 = define("LDSFLD_R8", ArgFieldToken, 0, 1)
	o = define("LDSFLD_O", ArgFieldToken, 0, 1)
	vt = define("LDSFLD_VT", ArgFieldToken, 0, 1)
	return
}

func defineStsfldFamily() (i4, i8, r8, o, vt Opcode) {
	i4 = define("STSFLD_I4", ArgFieldToken, 1, 0)
	i8 = define("STSFLD_I8", ArgFieldToken, 1, 0)
	r8 = define("STSFLD_R8", ArgFieldToken, 1, 0)
	o = define("STSFLD_O", ArgFieldToken, 1, 0)
	vt = define("STSFLD_VT", ArgFieldToken, 1, 0)
	return
}

func defineLdelemFamily() (i1, u1, i2, u2, i4, i8, r8, ref, vt Opcode) {
	i1 = define("LDELEM_I1", ArgNone, 2, 1)
	u1 = define("LDELEM_U1", ArgNone, 2, 1)
	i2 = define("LDELEM_I2", ArgNone, 2, 1)
	u2 = define("LDELEM_U2", ArgNone, 2, 1)
	i4 = define("LDELEM_I4", ArgNone, 2, 1)
	i8 = define("LDELEM_I8", ArgNone, 2, 1)
	r8 = define("LDELEM_R8", ArgNone, 2, 1)
	ref = define("LDELEM_REF", ArgNone, 2, 1)
	vt = define("LDELEM_VT", ArgClassToken, 2, 1)
	return
}

func defineStelemFamily() (i1, i2, i4, i8, r8, ref, vt Opcode) {
	i1 = define("STELEM_I1", ArgNone, 3, 0)
	i2 = define("STELEM_I2", ArgNone, 3, 0)
	i4 = define("STELEM_I4", ArgNone, 3, 0)
	i8 = define("STELEM_I8", ArgNone, 3, 0)
	r8 = define("STELEM_R8", ArgNone, 3, 0)
	ref = define("STELEM_REF", ArgNone, 3, 0)
	vt = define("STELEM_VT", ArgClassToken, 3, 0)
	return
}

func defineLdindFamily() (i1, u1, i2, u2, i4, i8, r8, o Opcode) {
	i1 = define("LDIND_I1", ArgNone, 1, 1)
	u1 = define("LDIND_U1", ArgNone, 1, 1)
	i2 = define("LDIND_I2", ArgNone, 1, 1)
	u2 = define("LDIND_U2", ArgNone, 1, 1)
	i4 = define("LDIND_I4", ArgNone, 1, 1)
	i8 = define("LDIND_I8", ArgNone, 1, 1)
	r8 = define("LDIND_R8", ArgNone, 1, 1)
	o = define("LDIND_O", ArgNone, 1, 1)
	return
}

func defineStindFamily() (i1, i2, i4, i8, r8, o Opcode) {
	i1 = define("STIND_I1", ArgNone, 2, 0)
	i2 = define("STIND_I2", ArgNone, 2, 0)
	i4 = define("STIND_I4", ArgNone, 2, 0)
	i8 = define("STIND_I8", ArgNone, 2, 0)
	r8 = define("STIND_R8", ArgNone, 2, 0)
	o = define("STIND_O", ArgNone, 2, 0)
	return
}
