package question

import (
	"fmt"
	"math/rand"
)

// The local bank is the terminal fallback: deterministic templates with
// randomized selection, varied enough that exhausting it against the dedup
// store is practically unreachable (the math mode alone yields hundreds of
// distinct items).

var bankCapitals = [][2]string{
	{"Japan", "Tokyo"}, {"France", "Paris"}, {"Canada", "Ottawa"},
	{"Brazil", "Brasília"}, {"Australia", "Canberra"}, {"Egypt", "Cairo"},
	{"Turkey", "Ankara"}, {"Mexico", "Mexico City"}, {"Argentina", "Buenos Aires"},
	{"South Korea", "Seoul"}, {"India", "New Delhi"}, {"Spain", "Madrid"},
	{"Italy", "Rome"}, {"Norway", "Oslo"}, {"Sweden", "Stockholm"},
	{"Finland", "Helsinki"}, {"Greece", "Athens"}, {"Portugal", "Lisbon"},
	{"Poland", "Warsaw"}, {"Netherlands", "Amsterdam"}, {"Belgium", "Brussels"},
	{"Switzerland", "Bern"}, {"Austria", "Vienna"}, {"Ireland", "Dublin"},
	{"Denmark", "Copenhagen"}, {"China", "Beijing"}, {"Thailand", "Bangkok"},
	{"Vietnam", "Hanoi"}, {"Indonesia", "Jakarta"}, {"South Africa", "Pretoria"},
}

var bankElements = [][2]string{
	{"Hydrogen", "H"}, {"Helium", "He"}, {"Carbon", "C"}, {"Oxygen", "O"},
	{"Sodium", "Na"}, {"Potassium", "K"}, {"Iron", "Fe"}, {"Gold", "Au"},
	{"Silver", "Ag"}, {"Copper", "Cu"}, {"Mercury", "Hg"}, {"Tin", "Sn"},
	{"Lead", "Pb"},
}

var bankPlanets = [][2]string{
	{"largest planet", "Jupiter"},
	{"closest planet to the Sun", "Mercury"},
	{"planet known as the Red Planet", "Mars"},
	{"planet with the most famous rings", "Saturn"},
}

// bankCandidate returns one item from the built-in bank.
func bankCandidate(rng *rand.Rand) candidate {
	var q, a, cat string
	switch rng.Intn(4) {
	case 0:
		pick := bankCapitals[rng.Intn(len(bankCapitals))]
		q = fmt.Sprintf("What is the capital of %s?", pick[0])
		a = pick[1]
		cat = "Geography"
	case 1:
		pick := bankElements[rng.Intn(len(bankElements))]
		q = fmt.Sprintf("Which element has the chemical symbol '%s'?", pick[1])
		a = pick[0]
		cat = "Science"
	case 2:
		pick := bankPlanets[rng.Intn(len(bankPlanets))]
		q = fmt.Sprintf("Which planet is the %s?", pick[0])
		a = pick[1]
		cat = "Space"
	default:
		q, a = bankMath(rng)
		cat = "Brain Teaser"
	}

	c := candidate{Question: q, Answer: a, Category: cat}
	applySEODefaults(&c)
	return c
}

func bankMath(rng *rand.Rand) (string, string) {
	switch rng.Intn(3) {
	case 0:
		x, y := 12+rng.Intn(88), 3+rng.Intn(7)
		return fmt.Sprintf("Solve this in your head: %d + %d = ?", x, y), fmt.Sprintf("%d", x+y)
	case 1:
		x, y := 12+rng.Intn(88), 3+rng.Intn(7)
		return fmt.Sprintf("Solve this in your head: %d - %d = ?", x, y), fmt.Sprintf("%d", x-y)
	default:
		x, y := 3+rng.Intn(10), 3+rng.Intn(10)
		return fmt.Sprintf("Solve this in your head: %d × %d = ?", x, y), fmt.Sprintf("%d", x*y)
	}
}
