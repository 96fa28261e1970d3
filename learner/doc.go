// Package learner fits sparse grid functions to scattered data.
//
// A Regression owns the surplus vector of a grid and computes it from
// samples (x_r, y_r) by minimizing
//
//	sum_r (f(x_r) - y_r)^2 + lambda*M*alpha^T*C*alpha
//
// with conjugate gradients. The data matrix B is never formed: its products
// are computed by the eval kernel over the training rows. C is the
// stiffness matrix of the Laplace operator or the identity.
package learner
