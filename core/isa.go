package core

import (
	"github.com/sarchlab/craftsim/instr"
)

const (
	ISAName        = "Minecraft"
	ISADescription = "A MIPS-based assembly language with Minecraft-themed " +
		"instructions for crafting, potions, and redstone."
)

// Definitions returns the instruction table in registration order. Every
// call builds fresh values, so callers may edit the result before
// registering it.
func Definitions() []instr.Spec {
	return []instr.Spec{
		{
			Mnemonic:    "craft",
			Syntax:      "craft $t1,$t2,$t3",
			Description: "Craft: Addition with overflow.",
			Format:      instr.FormatR,
			Template:    "000000 sssss ttttt fffff 00000 100000",
			Behavior:    runCraft,
		},
		{
			Mnemonic:    "punch",
			Syntax:      "punch $t1,$t2,$t3",
			Description: "Punch: Subtraction with overflow.",
			Format:      instr.FormatR,
			Template:    "000000 sssss ttttt fffff 00000 100010",
			Behavior:    runPunch,
		},
		{
			Mnemonic:    "stack",
			Syntax:      "stack $t1,$t2,$t3",
			Description: "Stack: Bitwise AND.",
			Format:      instr.FormatR,
			Template:    "000000 sssss ttttt fffff 00000 100100",
			Behavior:    runStack,
		},
		{
			Mnemonic:    "fletch",
			Syntax:      "fletch $t1,$t2,$t3",
			Description: "Fletch: Bitwise OR.",
			Format:      instr.FormatR,
			Template:    "000000 sssss ttttt fffff 00000 100101",
			Behavior:    runFletch,
		},
		{
			Mnemonic:    "move",
			Syntax:      "move $t1,$t2,-100",
			Description: "Move: Add immediate with overflow.",
			Format:      instr.FormatI,
			Template:    "001000 sssss fffff tttttttttttttttt",
			Behavior:    runMove,
		},
		{
			Mnemonic:    "chest",
			Syntax:      "chest $t1,0($t2)",
			Description: "Chest: Store word.",
			Format:      instr.FormatI,
			Template:    "101011 sssss fffff tttttttttttttttt",
			Behavior:    runChest,
		},
		{
			Mnemonic:    "enchant",
			Syntax:      "enchant $t1,0($t2)",
			Description: "Enchant: Load word.",
			Format:      instr.FormatI,
			Template:    "100011 sssss fffff tttttttttttttttt",
			Behavior:    runEnchant,
		},
		{
			Mnemonic:    "split",
			Syntax:      "split $t1,$t2,$t3",
			Description: "Split: Division, truncating toward zero.",
			Format:      instr.FormatR,
			Template:    "000000 sssss ttttt fffff 00000 011010",
			Behavior:    runSplit,
		},
		{
			Mnemonic:    "hop",
			Syntax:      "hop target",
			Description: "Hop: Jump unconditionally.",
			Format:      instr.FormatJ,
			Template:    "000010 ffffffffffffffffffffffffff",
			Behavior:    runHop,
		},
		{
			Mnemonic:    "torch",
			Syntax:      "torch $t1,$t2",
			Description: "Torch: Bitwise NOT.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00000 100111",
			Behavior:    runTorch,
		},
		{
			Mnemonic:    "potion.strength",
			Syntax:      "potion.strength $t1,$t2",
			Description: "Strength Potion: Multiplication by 2.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00001 110000",
			Behavior:    runPotionStrength,
		},
		{
			Mnemonic:    "potion.weakness",
			Syntax:      "potion.weakness $t1,$t2",
			Description: "Weakness Potion: Division by 2.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00001 110001",
			Behavior:    runPotionWeakness,
		},
		{
			Mnemonic:    "potion.speed",
			Syntax:      "potion.speed $t1,$t2",
			Description: "Speed Potion: Addition by 5.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00101 110010",
			Behavior:    runPotionSpeed,
		},
		{
			Mnemonic:    "potion.slowness",
			Syntax:      "potion.slowness $t1,$t2",
			Description: "Slowness Potion: Subtraction by 5.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00101 110011",
			Behavior:    runPotionSlowness,
		},
		{
			Mnemonic:    "summon",
			Syntax:      "summon $t1,$t2",
			Description: "Summon: Creates entity.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00000 110100",
			Behavior:    runSummon,
		},
		{
			Mnemonic:    "build",
			Syntax:      "build $t1,0($t2)",
			Description: "Build: Stores block ID to memory.",
			Format:      instr.FormatI,
			Template:    "101100 sssss fffff tttttttttttttttt",
			Behavior:    runChest,
		},
		{
			Mnemonic:    "break",
			Syntax:      "break $t1,0($t2)",
			Description: "Break: Collects the block ID and sets it to 0.",
			Format:      instr.FormatI,
			Template:    "101101 sssss fffff tttttttttttttttt",
			Behavior:    runBreak,
		},
		{
			Mnemonic:    "redstone",
			Syntax:      "redstone $t1,$t2",
			Description: "Redstone: Toggles least significant bit.",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00000 110101",
			Behavior:    runRedstone,
		},
		{
			Mnemonic:    "creeper",
			Syntax:      "creeper $t1,$t2,-100",
			Description: "Creeper: Explosion! Sets memory range to 0.",
			Format:      instr.FormatI,
			Template:    "001100 sssss fffff tttttttttttttttt",
			Behavior:    runCreeper,
		},
		{
			Mnemonic:    "farm",
			Syntax:      "farm $t1,$t2",
			Description: "Auto-Farm: Growth (increment by 1).",
			Format:      instr.FormatR,
			Template:    "000000 sssss 00000 fffff 00001 110110",
			Behavior:    runFarm,
		},
		{
			Mnemonic:    "reset.world",
			Syntax:      "reset.world",
			Description: "Reset: Resets the summon counter.",
			Format:      instr.FormatR,
			Template:    "000000 00000 00000 00000 00000 110111",
			Behavior:    runResetWorld,
		},
	}
}

// NewCatalog builds and freezes the instruction catalog.
func NewCatalog() (*instr.Catalog, error) {
	c := instr.NewCatalog(ISAName, ISADescription)

	for _, spec := range Definitions() {
		if err := c.Register(spec); err != nil {
			return nil, err
		}
	}

	c.Freeze()

	return c, nil
}

// MustNewCatalog is NewCatalog for program start-up, where a broken table
// is fatal.
func MustNewCatalog() *instr.Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}

	return c
}
