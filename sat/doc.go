/*
Package sat provides the minimal host SAT context a theory plugin needs:
Boolean variable allocation, literal assignment queries, a trail annotated
with decision levels, clause creation, justification objects, and scope
push/pop notifications.

It is deliberately small. It runs a two-watched-literal CNF core (the same
technique gophersat's solver package uses) and gives a registered Theory
a callback on every assignment, so that a package such as pb can maintain
its own watches over the same trail without the host knowing anything about
pseudo-Boolean constraints.
*/
package sat
