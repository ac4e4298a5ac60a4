// Package service implements the business operations of the annotation
// platform: user registration and login, music registration and retrieval,
// question CRUD, and the task workflow (create → tag → review → export).
// Services enforce role-based authorization at every operation boundary and
// run all mutations inside database transactions.
package service
