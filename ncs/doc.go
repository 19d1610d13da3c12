// Package ncs describes Non-Compensatory Sorting (NCS) models and the data they are learned from.
//
// # Definition
//
// An NCS model sorts alternatives, described by one grade per criterion, into ordered categories
// 0 (the lowest, "not validated") to H. For each category h and each criterion i, the model holds a
// requirement: either a minimal grade (threshold profiles) or a closed band of grades (interval profiles).
// The model also holds a family of sufficient coalitions of criteria, which is upward-closed:
// any superset of a sufficient coalition is itself sufficient.
//
// An alternative reaches category h iff the set of criteria whose grades meet the requirements of h
// is a sufficient coalition. It is assigned the highest category it reaches, or 0 if it reaches none.
//
// This package holds the types shared by the learner and its collaborators: dimensions, examples,
// coalitions, learned models, a classifier for those models and the typed errors returned
// by the learning pipeline.
package ncs
