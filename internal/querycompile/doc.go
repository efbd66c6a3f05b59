// Package querycompile turns filter input (an ordered ir value, usually read
// by gqlinput) into a queryir.FilterObject for one class.
//
// The class frame decides the shape of every edge: singular fields compile
// to Required, collection fields to Collection under a someHave or allHave
// key, and the field's range picks the leaf comparison. Operand keys are
// tried in a fixed order (eq ne lt le gt ge regex startsWith allOfTerms
// anyOfTerms) and the first present one wins.
//
// Every problem is a *CompileError. Nothing is looked up in a graph here;
// enum values resolve to node IRIs through the frames alone.
package querycompile
