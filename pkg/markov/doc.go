/*
Package markov provides an adaptive, variable-order character model and a
sampler that generates text with similar local statistics.

Input text is folded into a fixed 27-symbol alphabet (space plus the letters
a to z) and ingested one symbol at a time into a Graph of context nodes. Each
node counts how often each of its out-edges was taken. When a transition has
been seen often enough and its target still carries enough unrelated mass,
the target node is split in two so that the longer context can be told apart
from the shorter one, without choosing a fixed context length up front.

A Sampler then performs a weighted random walk over the finished graph. Given
the same seed, generation is fully reproducible.

For a complete usage example, see cmd/main.
*/
package markov
