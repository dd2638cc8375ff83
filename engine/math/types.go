package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector. Also used for RGBA colours.
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief An axis aligned rectangle. X/Y is the lower-left corner in
 * world space (or the top-left corner in pixel space).
 */
type Rect struct {
	X, Y, Width, Height float32
}

/**
 * @brief Represents the transform of a 2D object. NOTE: The properties
 * of this should not be edited directly, but done via the functions in
 * transform.go to ensure proper matrix generation.
 */
type Transform2D struct {
	/** @brief The position in the world. */
	position Vec2
	/** @brief The rotation angle in radians, counter clockwise. */
	angle float32
	/** @brief The scale in the world. */
	scale Vec2
	/** @brief The local origin the rotation and scale are applied around. */
	origin Vec2
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	isDirty bool
	/** @brief The local transformation matrix. */
	local Mat4
}
